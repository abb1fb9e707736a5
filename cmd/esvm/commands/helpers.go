package commands

import (
	"github.com/thoreinstein/esvm/internal/paths"
	"github.com/thoreinstein/esvm/internal/registry"
)

// newRegistry resolves the esvm home (creating it on first use) and
// returns a registry rooted there.
func newRegistry() (*registry.Registry, error) {
	home, err := paths.EnsureHome()
	if err != nil {
		return nil, err
	}
	return registry.New(home), nil
}
