package catalog

import (
	"sort"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// Categories maps a category label to the animal names it groups.
// Labels are iterated in sorted order wherever order matters.
type Categories map[string][]string

// DefaultCategories returns the built-in grouping used for suggestions.
// Names that are not in the catalog are ignored by consumers.
func DefaultCategories() Categories {
	return Categories{
		"pets":  {"cat", "dog", "fish", "rabbit", "turtle"},
		"farm":  {"cow", "duck", "pig", "sheep"},
		"wild":  {"elephant", "fox", "lion", "owl", "panda"},
		"water": {"duck", "fish", "penguin", "turtle", "whale"},
		"birds": {"duck", "owl", "penguin"},
		"cute":  {"cat", "panda", "penguin", "rabbit"},
	}
}

// Labels returns the category labels in sorted order.
func (c Categories) Labels() []string {
	out := make([]string, 0, len(c))
	for l := range c {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Members returns the names in a category.
func (c Categories) Members(label string) []string {
	return c[label]
}

// CategoriesOf returns, in sorted order, every label containing name.
func (c Categories) CategoriesOf(name string) []string {
	key := domain.NameKey(name)
	var out []string
	for _, l := range c.Labels() {
		for _, m := range c[l] {
			if domain.NameKey(m) == key {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Match returns the first label, in sorted order, that text contains.
func (c Categories) Match(text string) (string, bool) {
	for _, l := range c.Labels() {
		if strings.Contains(text, l) {
			return l, true
		}
	}
	return "", false
}
