package ports

// StalenessOracle decides whether an output must be regenerated from its inputs.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type StalenessOracle interface {
	// NeedsRebuild reports true when output is missing or any input is newer.
	// An input that cannot be stat'd is an error.
	NeedsRebuild(output string, inputs ...string) (bool, error)
}

// ArtifactRemover deletes build products.
type ArtifactRemover interface {
	// Remove deletes the file at path. It returns (false, nil) when there was nothing to remove.
	Remove(path string) (bool, error)
}
