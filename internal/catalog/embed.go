package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed assets/animals.json
var defaultAsset []byte

// DefaultAsset returns the raw embedded asset document.
func DefaultAsset() []byte { return defaultAsset }

// Default decodes the embedded asset.
func Default(opts ...Option) (*Catalog, error) {
	c, err := Load(defaultAsset, opts...)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return c, nil
}
