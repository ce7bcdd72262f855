package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathtree"
)

var treeCmd = &cobra.Command{
	Use:   "tree expr",
	Short: "Print the syntax tree of an expression",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := strings.Join(args, " ")
		a, err := mathtree.Parse(src)
		if a == nil {
			report(cmd.OutOrStdout(), 0, src, err)
			return err
		}
		dump(cmd.OutOrStdout(), a, err)
		if err != nil {
			report(cmd.OutOrStdout(), 0, src, err)
			return err
		}
		return nil
	},
}

// dump writes an indented listing of the nodes of a tree followed by what the
// tree as a whole depends on and how it renders. err is the error from parsing
// the tree; a partial tree also gets the parser's state where input ended.
func dump(w io.Writer, a *mathtree.Tree, err error) {
	dumpNode(w, a, a.Root(), 0)
	fmt.Fprintf(w, "vars: %s\n", strings.Join(a.DependsOn(), " "))
	fmt.Fprintf(w, "polynomial: %t\n", a.IsPolynomial())
	fmt.Fprintf(w, "canonical: %s\n", a.BuildExpression())
	fmt.Fprintf(w, "minimal: %s\n", a.String())
	if mathtree.IsIncomplete(err) {
		diagnose(w, a)
	}
}

func dumpNode(w io.Writer, a *mathtree.Tree, id mathtree.NodeID, indent int) {
	fmt.Fprintf(w, "%s%v %s depth=%d", strings.Repeat("  ", indent), a.Kind(id), a.Name(id), a.Depth(id))
	if deps := a.NodeDependsOn(id); len(deps) != 0 {
		fmt.Fprintf(w, " deps=%s", strings.Join(deps, ","))
	}
	fmt.Fprintln(w)
	for _, k := range a.Children(id) {
		dumpNode(w, a, k, indent+1)
	}
}
