package probe

import (
	"context"
	"time"
)

// Diagnostics runs follow-up checks once the health probe has given up, so a
// missing DNS record or a closed port can be told apart from a service that
// is still loading its model.
type Diagnostics struct {
	Checkers []Checker
	Timeout  time.Duration // per checker
}

func NewDiagnostics(timeout time.Duration, checkers ...Checker) *Diagnostics {
	if len(checkers) == 0 {
		checkers = []Checker{NewDNSChecker(), NewTCPChecker(timeout)}
	}
	return &Diagnostics{Checkers: checkers, Timeout: timeout}
}

func (d *Diagnostics) Run(ctx context.Context, target string) []CheckResult {
	results := make([]CheckResult, 0, len(d.Checkers))
	for _, c := range d.Checkers {
		cctx, cancel := ctx, context.CancelFunc(func() {})
		if d.Timeout > 0 {
			cctx, cancel = context.WithTimeout(ctx, d.Timeout)
		}
		results = append(results, c.Check(cctx, target))
		cancel()
	}
	return results
}
