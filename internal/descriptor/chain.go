package descriptor

import (
	"context"
	"errors"
)

// Chain asks each source in order and returns the first hit. A source
// failing with anything but ErrNotFound stops the chain.
type Chain []Source

var _ Source = Chain(nil)

// Lookup implements Source.
func (c Chain) Lookup(ctx context.Context, name string) (*Record, error) {
	for _, src := range c {
		rec, err := src.Lookup(ctx, name)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}
