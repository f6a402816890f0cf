// Package doi allocates candidate DOIs within a collection's namespace.
package doi

import (
	"context"
	"fmt"
	"math/rand"
)

// TakenFunc reports whether a DOI is already assigned to a record.
type TakenFunc func(ctx context.Context, doi string) (bool, error)

// New draws random 8-digit suffixes under <prefix>/<doiKey>. until one is
// not yet taken. The check is advisory only: no reservation is held between
// generation and record creation, and the retry loop is unbounded — with a
// 10^8 address space per collection the collision probability is negligible,
// and the unique index on record DOIs is the backstop for the remaining
// race.
func New(ctx context.Context, prefix, doiKey string, taken TakenFunc) (string, error) {
	for {
		candidate := fmt.Sprintf("%s/%s.%08d", prefix, doiKey, rand.Intn(100000000))
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
}
