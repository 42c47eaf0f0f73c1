package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// OracleNodeID is the unique identifier for the staleness oracle Graft node.
	OracleNodeID graft.ID = "adapter.fs.oracle"
	// RemoverNodeID is the unique identifier for the artifact remover Graft node.
	RemoverNodeID graft.ID = "adapter.fs.remover"
)

func init() {
	graft.Register(graft.Node[ports.StalenessOracle]{
		ID:        OracleNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StalenessOracle, error) {
			return NewOracle(), nil
		},
	})

	graft.Register(graft.Node[ports.ArtifactRemover]{
		ID:        RemoverNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ArtifactRemover, error) {
			return NewRemover(), nil
		},
	})
}
