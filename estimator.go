package nutscan

import (
	"context"

	"github.com/nutsdb/nutscan/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SizeEstimate is an advisory key count for display.
type SizeEstimate struct {
	Count int64 `json:"count"`
	// Exact is false when the count was not computed; Count is then 0.
	Exact bool `json:"exact"`
}

// EstimateSize sums DBSize over targets for the match-all pattern. For any
// other pattern it does not scan to count and reports an inexact zero.
func EstimateSize(ctx context.Context, store Store, pattern string, targets []Target) (SizeEstimate, error) {
	if pattern != utils.MatchAll {
		return SizeEstimate{}, nil
	}

	sizes := make([]int64, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			n, err := store.DBSize(gctx, t)
			if err != nil {
				return errors.Wrapf(err, "dbsize of %s", t)
			}
			sizes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SizeEstimate{}, err
	}

	var total int64
	for _, n := range sizes {
		total += n
	}
	return SizeEstimate{Count: total, Exact: true}, nil
}
