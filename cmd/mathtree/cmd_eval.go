package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathtree"
)

var (
	flagEcho  bool
	flagLimit int
)

var evalCmd = &cobra.Command{
	Use:   "eval [expr ...]",
	Short: "Evaluate expressions",
	Long:  "Evaluate each argument as an expression, or each line of stdin if there are no arguments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		srcs := args
		if len(srcs) == 0 {
			srcs, err = readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		failed := 0
		for _, src := range srcs {
			if err := evalOne(cmd.OutOrStdout(), s, src, flagEcho, flagLimit); err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d expressions failed", failed, len(srcs))
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&flagEcho, "echo", false, "print the canonical form of each expression")
	evalCmd.Flags().IntVar(&flagLimit, "limit", -1, "parse only the first n runes of each expression and report where parsing stopped")
}

// readLines reads the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	return lines, sc.Err()
}

// evalOne parses and evaluates one expression, writing its result or error to
// w. With limit >= 0, only that many runes are parsed, and the state where
// parsing stopped is written first.
func evalOne(w io.Writer, s *settings, src string, echo bool, limit int) error {
	a, err := mathtree.Parse(src, mathtree.Limit(limit))
	if limit >= 0 && a != nil {
		diagnose(w, a)
	}
	if err != nil {
		report(w, 0, src, err)
		return err
	}
	if echo {
		fmt.Fprint(w, exprStyle.Render(a.BuildExpression()), " : ")
	}
	r, err := s.eval(a)
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render(err.Error()))
		return err
	}
	fmt.Fprintln(w, resultStyle.Render(r))
	return nil
}

// report writes a parse error. If the error has a position, the expression is
// repeated with a caret under it, indented by w.
func report(out io.Writer, w int, src string, err error) {
	var ie mathtree.InputError
	if errors.As(err, &ie) {
		if w == 0 {
			fmt.Fprintln(out, exprStyle.Render(src))
		}
		fmt.Fprintln(out, caret(w, ie.Pos()))
	}
	fmt.Fprintln(out, errorStyle.Render(err.Error()))
}

// diagnose writes where parsing of a partial expression stopped.
func diagnose(w io.Writer, a *mathtree.Tree) {
	last := "none"
	if id := a.LastOp(); id != mathtree.NoNode {
		last = a.Name(id)
	}
	fmt.Fprintf(w, "%s %q  %s %d  %s %s\n",
		labelStyle.Render("leftover"), a.Leftover(),
		labelStyle.Render("open"), a.OpenDepth(),
		labelStyle.Render("last op"), last,
	)
}
