package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathtree"
)

const (
	historyFile = "." + appName + "_history"
	promptMain  = "> "
	promptCont  = "... "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate expressions interactively",
	Long: "Evaluate expressions interactively. An incomplete expression continues on the next line.\n\n" +
		"Commands:\n" +
		"  :let name = expr   bind a variable\n" +
		"  :vars              list variables\n" +
		"  :tree expr         print the syntax tree of an expression\n" +
		"  :funcs             list functions\n" +
		"  :quit              exit\n\n" +
		"The result of the last expression is bound to ans.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return repl(&session{s: s, out: cmd.OutOrStdout()})
	},
}

func repl(ss *session) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readExpr(ln)
		if !ok {
			fmt.Fprintln(ss.out)
			return nil
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		ln.AppendHistory(src)
		if ss.exec(src) {
			return nil
		}
	}
}

// readExpr reads lines until they form an expression that is not incomplete.
// An empty continuation line gives up on completing it.
func readExpr(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			// io.EOF, liner.ErrPromptAborted, or a terminal failure all end
			// the session.
			return "", false
		}
		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte(' ')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := mathtree.Parse(src); mathtree.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// session is the state of a REPL.
type session struct {
	s   *settings
	out io.Writer
}

// exec runs one line of input. It returns true if the session should end.
func (ss *session) exec(src string) bool {
	if !strings.HasPrefix(src, ":") {
		ss.expr(src)
		return false
	}
	cmd, rest, _ := strings.Cut(src[1:], " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "quit", "q":
		return true
	case "let":
		name, val, ok := strings.Cut(rest, "=")
		if !ok {
			fmt.Fprintln(ss.out, errorStyle.Render("usage: :let name = expr"))
			return false
		}
		name = strings.TrimSpace(name)
		if !isVar(name) {
			fmt.Fprintln(ss.out, errorStyle.Render(fmt.Sprintf("cannot assign to %q", name)))
			return false
		}
		if err := ss.s.let(name, val); err != nil {
			fmt.Fprintln(ss.out, errorStyle.Render(err.Error()))
		}
	case "vars":
		for _, name := range ss.s.ctx.Names() {
			fmt.Fprintf(ss.out, "%s = %s\n", labelStyle.Render(name), fmt.Sprintf(ss.s.format, ss.s.ctx.Lookup(name)))
		}
	case "tree":
		a, err := mathtree.Parse(rest)
		if a == nil {
			report(ss.out, 0, rest, err)
			return false
		}
		dump(ss.out, a, err)
		if err != nil {
			report(ss.out, 0, rest, err)
		}
	case "funcs":
		var names []string
		for _, op := range mathtree.DefaultRegistry().Ops() {
			if op.Named {
				names = append(names, fmt.Sprintf("%s/%d", op.Name, op.Arity))
			}
		}
		fmt.Fprintln(ss.out, strings.Join(names, " "))
	default:
		fmt.Fprintln(ss.out, errorStyle.Render("unknown command "+strconv.Quote(cmd)+"; type :quit to exit"))
	}
	return false
}

// expr evaluates an expression and binds its value to ans.
func (ss *session) expr(src string) {
	a, err := mathtree.Parse(src)
	if err != nil {
		report(ss.out, 0, src, err)
		return
	}
	v, err := ss.s.value(a)
	if err != nil {
		var ne *mathtree.NameError
		if errors.As(err, &ne) {
			err = fmt.Errorf("%w (use :let %s = value)", err, ne.Name)
		}
		fmt.Fprintln(ss.out, errorStyle.Render(err.Error()))
		return
	}
	switch v := v.(type) {
	case *big.Float:
		ss.s.ctx.Set("ans", v)
	case float64:
		if !math.IsNaN(v) {
			ss.s.ctx.Set("ans", big.NewFloat(v))
		}
	}
	fmt.Fprintln(ss.out, resultStyle.Render(fmt.Sprintf(ss.s.format, v)))
}

// isVar reports whether name parses as a lone variable.
func isVar(name string) bool {
	a, err := mathtree.Parse(name)
	if err != nil {
		return false
	}
	kids := a.Children(a.Root())
	return len(kids) == 1 && a.Kind(kids[0]) == mathtree.KindVar
}
