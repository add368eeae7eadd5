package cmd

import (
	"log/slog"

	"github.com/dukex/soarbridge/pkg/steptypes"
)

// NewRegistry returns the built-in step type tables, overlaid with the YAML file at path
// when one is given.
func NewRegistry(logger *slog.Logger, path string) (*steptypes.Registry, error) {
	if path == "" {
		return steptypes.DefaultRegistry(), nil
	}

	registry, err := steptypes.LoadRegistry(path)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded step type registry",
		"path", path,
		"starts", len(registry.Starts),
		"unsupported", len(registry.Unsupported),
		"supported", len(registry.Supported))

	return registry, nil
}
