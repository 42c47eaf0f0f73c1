package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			fs.OracleNodeID,
			fs.RemoverNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(a, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	spawner, err := graft.Dep[ports.Spawner](ctx)
	if err != nil {
		return nil, err
	}

	oracle, err := graft.Dep[ports.StalenessOracle](ctx)
	if err != nil {
		return nil, err
	}

	remover, err := graft.Dep[ports.ArtifactRemover](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, spawner, oracle, remover, log, telemetry), nil
}
