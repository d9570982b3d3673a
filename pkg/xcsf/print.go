package xcsf

import (
	"fmt"
	"strings"
)

// Print returns a human-readable dump of the population`). Non-verbose output is a one-line summary; verbose
// additionally lists every macro-classifier's lifecycle fields.
func (e *Engine) Print(verbose bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "xcsf: t=%d macro=%d numerosity=%d/%d mean_fit=%.4f\n",
		e.time, len(e.Pop.Cls), e.Pop.NumSum(), e.Params.PopSize, e.Pop.MeanFitness())
	if !verbose {
		return b.String()
	}
	for i, c := range e.Pop.Cls {
		fmt.Fprintf(&b, "  [%d] num=%d exp=%d err=%.4f fit=%.4f size=%.2f time=%d age=%d cond=%T act=%T pred=%T\n",
			i, c.Num, c.Exp, c.Err, c.Fit, c.Size, c.Time, c.Age, c.Condition, c.Action, c.Prediction)
	}
	return b.String()
}
