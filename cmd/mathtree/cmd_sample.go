package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathtree"
)

var (
	flagVar  string
	flagFrom float64
	flagTo   float64
	flagStep float64
)

var sampleCmd = &cobra.Command{
	Use:   "sample expr",
	Short: "Evaluate an expression over a range of one variable",
	Long: "Evaluate an expression over a range of one variable and print x,y rows.\n" +
		"Samples that are not finite are skipped, and a blank line separates the\n" +
		"segments on either side of them.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		src := strings.Join(args, " ")
		a, err := mathtree.Parse(src)
		if err != nil {
			report(cmd.OutOrStdout(), 0, src, err)
			return err
		}
		return sample(cmd.OutOrStdout(), a, s.ctx.Bindings(), flagVar, flagFrom, flagTo, flagStep)
	},
}

func init() {
	f := sampleCmd.Flags()
	f.StringVar(&flagVar, "var", "x", "variable to vary")
	f.Float64Var(&flagFrom, "from", -1, "first value of the variable")
	f.Float64Var(&flagTo, "to", 1, "last value of the variable")
	f.Float64Var(&flagStep, "step", 0.1, "distance between samples")
}

// sample writes rows of name,value for name from from to to in steps of step.
// Other variables come from vars.
func sample(w io.Writer, a *mathtree.Tree, vars mathtree.Bindings, name string, from, to, step float64) error {
	switch {
	case !(step > 0) || math.IsInf(step, 0):
		return fmt.Errorf("step must be positive and finite, not %g", step)
	case math.IsNaN(from) || math.IsNaN(to) || math.IsInf(from, 0) || math.IsInf(to, 0):
		return errors.New("range must be finite")
	case from > to:
		return fmt.Errorf("empty range from %g to %g", from, to)
	}
	b := make(mathtree.Bindings, len(vars)+1)
	for k, v := range vars {
		b[k] = v
	}
	n := int(math.Floor((to-from)/step + 1e-9))
	started, gap := false, false
	for i := 0; i <= n; i++ {
		x := from + float64(i)*step
		b[name] = x
		y, err := a.Eval(b)
		if err != nil {
			return err
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			gap = started
			continue
		}
		if gap {
			fmt.Fprintln(w)
			gap = false
		}
		started = true
		fmt.Fprintf(w, "%s,%s\n", strconv.FormatFloat(x, 'g', -1, 64), strconv.FormatFloat(y, 'g', -1, 64))
	}
	return nil
}
