// Package catalog holds the immutable set of animal drawings the tutor
// can teach, plus the category table used for suggestions.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Catalog maps normalized animal names to drawings. It is never modified
// after construction, so it is safe to share between goroutines.
type Catalog struct {
	byKey map[string]*domain.AnimalDrawing
	names []string
}

// Option configures catalog construction.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger reports name collisions and load statistics.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New builds a catalog from drawings. When two drawings share a
// normalized name the later one wins.
func New(drawings []*domain.AnimalDrawing, opts ...Option) *Catalog {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{byKey: make(map[string]*domain.AnimalDrawing, len(drawings))}
	for _, d := range drawings {
		key := d.Key()
		if _, dup := c.byKey[key]; dup && o.log != nil {
			o.log.Warn("duplicate animal %q, keeping the later record", key)
		}
		c.byKey[key] = d
	}

	c.names = make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		c.names = append(c.names, k)
	}
	sort.Strings(c.names)

	if o.log != nil {
		o.log.Info("catalog ready: %d animals", len(c.names))
	}
	return c
}

// Load decodes an asset document and builds a catalog from it.
func Load(data []byte, opts ...Option) (*Catalog, error) {
	drawings, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return New(drawings, opts...), nil
}

// LoadFile reads and decodes the asset at path.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Load(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return c, nil
}

// Get looks an animal up by name, ignoring case and surrounding space.
func (c *Catalog) Get(name string) (*domain.AnimalDrawing, bool) {
	d, ok := c.byKey[domain.NameKey(name)]
	return d, ok
}

// AllNames returns every normalized name in lexicographic order. The
// returned slice is a copy.
func (c *Catalog) AllNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// All returns every drawing sorted by name.
func (c *Catalog) All() []*domain.AnimalDrawing {
	out := make([]*domain.AnimalDrawing, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byKey[n])
	}
	return out
}

// ByTier returns the drawings authored with the given tier, sorted by name.
func (c *Catalog) ByTier(tier int) []*domain.AnimalDrawing {
	var out []*domain.AnimalDrawing
	for _, n := range c.names {
		d := c.byKey[n]
		if d.Tier != nil && *d.Tier == tier {
			out = append(out, d)
		}
	}
	return out
}

// LowestTier returns the smallest tier present, or false when no drawing
// has a tier.
func (c *Catalog) LowestTier() (int, bool) {
	best, found := 0, false
	for _, d := range c.byKey {
		if d.Tier == nil {
			continue
		}
		if !found || *d.Tier < best {
			best, found = *d.Tier, true
		}
	}
	return best, found
}

// Len returns the number of animals.
func (c *Catalog) Len() int { return len(c.names) }
