package ports

import "go.trai.ch/quill/internal/core/domain"

// ConfigLoader defines the interface for loading the client configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the config file from the given working directory and
	// returns the resolved configuration. Defaults apply when no file exists.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the directory holding a config file.
	// Returns cwd when none is found.
	DiscoverRoot(cwd string) (string, error)
}
