// Package resolver maps free-form text to a known animal drawing through
// exact, containment and fuzzy matching, and offers curated alternatives
// when nothing matches.
package resolver

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/catalog"
	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Defaults used when no option overrides them.
const (
	DefaultMaxDistance  = 2
	DefaultFallbackSize = 3
	MaxFallbackSize     = 3
	relatedPool         = 5
	relatedSize         = 3
)

// Kind is the outcome of a resolution.
type Kind int

const (
	KindExact Kind = iota
	KindSuggestion
	KindFallback
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindSuggestion:
		return "suggestion"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result describes how an input was resolved.
//
// Exact and Suggestion results carry the matched Drawing; Suggestion also
// carries its Name and edit Distance. Fallback results carry up to the
// configured number of Alternatives, plus the Category they were drawn
// from when the input named one.
type Result struct {
	Kind         Kind
	Input        string
	Drawing      *domain.AnimalDrawing
	Suggestion   string
	Distance     int
	Alternatives []*domain.AnimalDrawing
	Category     string
}

// Err returns domain.ErrNotFound for a fallback with nothing to offer.
func (r Result) Err() error {
	if r.Kind == KindFallback && len(r.Alternatives) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Resolver is safe for concurrent use. The catalog and category table are
// read-only; the random source is serialized internally.
type Resolver struct {
	catalog      *catalog.Catalog
	categories   catalog.Categories
	maxDistance  int
	fallbackSize int
	log          *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRandom sets the random source used for fallbacks and related
// animals. Pass a seeded source for deterministic results.
func WithRandom(r *rand.Rand) Option {
	return func(res *Resolver) { res.rng = r }
}

// WithCategories replaces the default category table.
func WithCategories(c catalog.Categories) Option {
	return func(res *Resolver) { res.categories = c }
}

// WithMaxDistance sets the largest edit distance accepted as a suggestion.
func WithMaxDistance(n int) Option {
	return func(res *Resolver) { res.maxDistance = n }
}

// WithFallbackSize caps the number of fallback alternatives. n is
// clamped to 1..MaxFallbackSize.
func WithFallbackSize(n int) Option {
	return func(res *Resolver) { res.fallbackSize = min(max(n, 1), MaxFallbackSize) }
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(res *Resolver) { res.log = l }
}

// New creates a resolver over c.
func New(c *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:      c,
		categories:   catalog.DefaultCategories(),
		maxDistance:  DefaultMaxDistance,
		fallbackSize: DefaultFallbackSize,
		log:          logger.New(logger.LevelOff, nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r
}

// Resolve matches input against the catalog. The first strategy to
// succeed wins: exact key, containment in either direction (in sorted
// name order), closest name within the distance limit, then fallback.
// Blank input goes straight to fallback.
func (r *Resolver) Resolve(input string) Result {
	q := Normalize(input)
	if q == "" {
		return r.fallback(q)
	}

	if d, ok := r.catalog.Get(q); ok {
		r.log.Debug("exact %q", q)
		return Result{Kind: KindExact, Input: q, Drawing: d}
	}

	names := r.catalog.AllNames()
	for _, name := range names {
		if strings.Contains(q, name) || strings.Contains(name, q) {
			d, _ := r.catalog.Get(name)
			r.log.Debug("containment %q -> %q", q, name)
			return Result{Kind: KindExact, Input: q, Drawing: d}
		}
	}

	best, bestDist := "", r.maxDistance+1
	for _, name := range names {
		if dist := Distance(q, name); dist < bestDist {
			best, bestDist = name, dist
		}
	}
	if best != "" {
		d, _ := r.catalog.Get(best)
		r.log.Debug("fuzzy %q -> %q (distance %d)", q, best, bestDist)
		return Result{Kind: KindSuggestion, Input: q, Drawing: d, Suggestion: best, Distance: bestDist}
	}

	return r.fallback(q)
}

func (r *Resolver) fallback(q string) Result {
	res := Result{Kind: KindFallback, Input: q}

	var pool []*domain.AnimalDrawing
	if label, ok := r.categories.Match(q); ok {
		pool = r.lookup(r.categories.Members(label), "")
		if len(pool) > 0 {
			res.Category = label
		}
	}
	if len(pool) == 0 {
		pool = r.catalog.ByTier(1)
	}
	if len(pool) == 0 {
		if low, ok := r.catalog.LowestTier(); ok {
			pool = r.catalog.ByTier(low)
		}
	}
	if len(pool) == 0 {
		pool = r.catalog.All()
	}

	r.shuffle(pool)
	if len(pool) > r.fallbackSize {
		pool = pool[:r.fallbackSize]
	}
	res.Alternatives = pool
	r.log.Debug("fallback %q: %d alternatives (category %q)", q, len(pool), res.Category)
	return res
}

// RelatedTo suggests up to three other animals: peers from every category
// containing name, topped up to five with same-tier peers, then sampled
// at random.
func (r *Resolver) RelatedTo(name string) []*domain.AnimalDrawing {
	key := domain.NameKey(name)
	seen := map[string]bool{key: true}

	var pool []*domain.AnimalDrawing
	for _, label := range r.categories.CategoriesOf(key) {
		for _, d := range r.lookup(r.categories.Members(label), key) {
			if !seen[d.Key()] {
				seen[d.Key()] = true
				pool = append(pool, d)
			}
		}
	}

	if self, ok := r.catalog.Get(key); ok && self.Tier != nil && len(pool) < relatedPool {
		for _, d := range r.catalog.ByTier(*self.Tier) {
			if len(pool) >= relatedPool {
				break
			}
			if !seen[d.Key()] {
				seen[d.Key()] = true
				pool = append(pool, d)
			}
		}
	}

	r.shuffle(pool)
	if len(pool) > relatedSize {
		pool = pool[:relatedSize]
	}
	return pool
}

// lookup resolves names to drawings, skipping unknown names, duplicates
// and exclude.
func (r *Resolver) lookup(names []string, exclude string) []*domain.AnimalDrawing {
	var out []*domain.AnimalDrawing
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		k := domain.NameKey(n)
		if k == exclude || seen[k] {
			continue
		}
		seen[k] = true
		if d, ok := r.catalog.Get(k); ok {
			out = append(out, d)
		}
	}
	return out
}

// shuffle permutes s in place. s must not alias catalog storage.
func (r *Resolver) shuffle(s []*domain.AnimalDrawing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
