// Package fs provides file system adapters for staleness checks and artifact removal.
package fs

import (
	"errors"
	iofs "io/fs"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StalenessOracle = (*Oracle)(nil)

// Oracle compares modification times of outputs against their inputs.
type Oracle struct{}

// NewOracle creates a new Oracle.
func NewOracle() *Oracle {
	return &Oracle{}
}

// NeedsRebuild reports whether output is missing or older than any input.
// Times are compared at second granularity. An input that cannot be stat'd is an error,
// a dependency that vanished is never silently ignored.
func (o *Oracle) NeedsRebuild(output string, inputs ...string) (bool, error) {
	outInfo, err := os.Stat(output)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return true, nil
		}
		return false, statError(err, output)
	}
	outSec := outInfo.ModTime().Unix()

	for _, input := range inputs {
		inInfo, err := os.Stat(input)
		if err != nil {
			return false, statError(err, input)
		}
		if inInfo.ModTime().Unix() > outSec {
			return true, nil
		}
	}
	return false, nil
}

func statError(err error, path string) error {
	return errors.Join(domain.ErrStaleCheck, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path))
}
