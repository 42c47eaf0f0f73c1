package fs

import (
	"errors"
	iofs "io/fs"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactRemover = (*Remover)(nil)

// Remover deletes build products from disk.
type Remover struct{}

// NewRemover creates a new Remover.
func NewRemover() *Remover {
	return &Remover{}
}

// Remove deletes the file at path. A path that does not exist is not an error.
func (r *Remover) Remove(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Join(domain.ErrRemove, zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path))
	}
	return true, nil
}
