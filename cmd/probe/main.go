package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/karuizawa/probe/internal/expr"
	"github.com/karuizawa/probe/internal/session"
)

func main() {
	// debug mode: if DEBUG environment variable is set, enable debug logging
	if _, ok := os.LookupEnv("DEBUG"); ok {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: probe <subcommand> [options]")
		fmt.Fprintln(os.Stderr, "Available subcommands: eval, parse")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "eval":
		evalCmd := flag.NewFlagSet("eval", flag.ExitOnError)
		var locals []session.Local
		evalCmd.Func("var", "variable binding as name:type=value (repeatable)", func(s string) error {
			l, err := parseBinding(s)
			if err != nil {
				return err
			}
			locals = append(locals, l)
			return nil
		})
		evalCmd.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: probe eval [options] [expression]\n\nWithout an expression, reads one expression per line from stdin.\n\nOptions:\n")
			evalCmd.PrintDefaults()
		}
		evalCmd.Parse(os.Args[2:])

		sess := session.New()
		sess.AddLocals(locals)

		if evalCmd.NArg() < 1 {
			if err := runInteractive(sess); err != nil {
				slog.Error("Error reading input", "error", err)
				os.Exit(1)
			}
			return
		}

		result, err := sess.Eval(strings.Join(evalCmd.Args(), " "))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("%s : %s\n", result.Value, result.Type)

	case "parse":
		parseCmd := flag.NewFlagSet("parse", flag.ExitOnError)
		parseCmd.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: probe parse <expression>\n")
		}
		parseCmd.Parse(os.Args[2:])

		if parseCmd.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Error: Expression must be specified for parse.")
			parseCmd.Usage()
			os.Exit(1)
		}

		node, err := expr.Parse(strings.Join(parseCmd.Args(), " "))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(node)

	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Available subcommands: eval, parse")
		os.Exit(1)
	}
}

// parseBinding splits a name:type=value flag argument into a local.
func parseBinding(s string) (session.Local, error) {
	name, rest, ok := strings.Cut(s, ":")
	if !ok {
		return session.Local{}, fmt.Errorf("invalid binding %q: expected name:type=value", s)
	}
	typeName, value, ok := strings.Cut(rest, "=")
	if !ok {
		return session.Local{}, fmt.Errorf("invalid binding %q: expected name:type=value", s)
	}
	return session.Local{Name: strings.TrimSpace(name), Type: typeName, Value: value}, nil
}

// runInteractive evaluates one expression per line until EOF. Errors are
// printed and do not end the loop.
func runInteractive(sess *session.Session) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		result, err := sess.Eval(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("%s : %s\n", result.Value, result.Type)
	}
	return scanner.Err()
}
