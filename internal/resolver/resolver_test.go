package resolver

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/hammamikhairi/ottodraw/internal/catalog"
	"github.com/hammamikhairi/ottodraw/internal/domain"
)

func drawing(name string, tier int, steps int) *domain.AnimalDrawing {
	d := &domain.AnimalDrawing{Name: name}
	if tier > 0 {
		d.Tier = domain.IntPtr(tier)
	}
	for i := 0; i < steps; i++ {
		d.Steps = append(d.Steps, domain.Step{Instruction: "step"})
	}
	return d
}

func scenario(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	c := catalog.New([]*domain.AnimalDrawing{
		drawing("cat", 1, 2),
		drawing("dog", 1, 2),
		drawing("elephant", 3, 4),
	})
	opts = append([]Option{WithRandom(rand.New(rand.NewSource(7)))}, opts...)
	return New(c, opts...)
}

func names(ds []*domain.AnimalDrawing) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key()
	}
	sort.Strings(out)
	return out
}

func TestResolveScenario(t *testing.T) {
	r := scenario(t)

	tests := []struct {
		input    string
		wantKind Kind
		wantName string
	}{
		{"dog", KindExact, "dog"},
		{" Cat  ", KindExact, "cat"},
		{"ELEPHANT", KindExact, "elephant"},
		{"dg", KindSuggestion, "dog"},
		{"kat", KindSuggestion, "cat"},
		{"elefant", KindSuggestion, "elephant"},
		{"a big dog please", KindExact, "dog"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := r.Resolve(tt.input)
			if res.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", res.Kind, tt.wantKind)
			}
			if res.Drawing == nil || res.Drawing.Key() != tt.wantName {
				t.Fatalf("drawing = %v, want %s", res.Drawing, tt.wantName)
			}
			if tt.wantKind == KindSuggestion && res.Suggestion != tt.wantName {
				t.Fatalf("suggestion = %q", res.Suggestion)
			}
		})
	}
}

func TestSuggestionDistance(t *testing.T) {
	res := scenario(t).Resolve("dg")
	if res.Distance != 1 {
		t.Fatalf("distance = %d, want 1", res.Distance)
	}
}

func TestFallbackUsesTierOne(t *testing.T) {
	r := scenario(t)
	for i := 0; i < 20; i++ {
		res := r.Resolve("zzz")
		if res.Kind != KindFallback {
			t.Fatalf("kind = %s, want fallback", res.Kind)
		}
		got := names(res.Alternatives)
		if len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
			t.Fatalf("alternatives = %v, want [cat dog]", got)
		}
		if res.Err() != nil {
			t.Fatalf("unexpected err %v", res.Err())
		}
	}
}

func TestFallbackIsDeterministicForSeed(t *testing.T) {
	a := scenario(t).Resolve("qqq")
	b := scenario(t).Resolve("qqq")
	if len(a.Alternatives) == 0 || len(a.Alternatives) != len(b.Alternatives) {
		t.Fatalf("got %d and %d alternatives", len(a.Alternatives), len(b.Alternatives))
	}
	for i := range a.Alternatives {
		if a.Alternatives[i].Key() != b.Alternatives[i].Key() {
			t.Fatalf("same seed produced different fallbacks at %d: %s vs %s",
				i, a.Alternatives[i].Key(), b.Alternatives[i].Key())
		}
	}
}

func TestBlankInputFallsBack(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if res := scenario(t).Resolve(in); res.Kind != KindFallback || len(res.Alternatives) == 0 {
			t.Fatalf("Resolve(%q) = %s with %d alternatives", in, res.Kind, len(res.Alternatives))
		}
	}
}

func TestCatalogKeysMatchNormalizedInput(t *testing.T) {
	c := catalog.New([]*domain.AnimalDrawing{
		drawing("Polar  Bear", 2, 1),
		drawing("e\u0301le\u0301phant", 3, 1),
	})
	r := New(c, WithRandom(rand.New(rand.NewSource(1))))

	for _, in := range []string{"polar bear", "POLAR   BEAR", "\u00e9l\u00e9phant", "ÉLÉPHANT"} {
		res := r.Resolve(in)
		if res.Kind != KindExact || res.Distance != 0 {
			t.Errorf("Resolve(%q) = %s (distance %d)", in, res.Kind, res.Distance)
		}
	}
}

func TestContainmentPrecedence(t *testing.T) {
	c := catalog.New([]*domain.AnimalDrawing{
		drawing("cat", 1, 1),
		drawing("catfish", 2, 1),
		drawing("fish", 1, 1),
	})
	r := New(c, WithRandom(rand.New(rand.NewSource(1))))

	if res := r.Resolve("catfish"); res.Drawing.Key() != "catfish" {
		t.Fatalf("catfish resolved to %s", res.Drawing.Key())
	}
	if res := r.Resolve("fish"); res.Drawing.Key() != "fish" {
		t.Fatalf("fish resolved to %s", res.Drawing.Key())
	}
	// "cat" sorts before "catfish", so it wins the containment scan.
	if res := r.Resolve("my catfish"); res.Kind != KindExact || res.Drawing.Key() != "cat" {
		t.Fatalf("my catfish resolved to %s %v", res.Kind, res.Drawing)
	}
	if res := r.Resolve("atfis"); res.Drawing.Key() != "catfish" {
		t.Fatalf("atfis resolved to %s", res.Drawing.Key())
	}
}

func TestFuzzyTieBreaksByName(t *testing.T) {
	c := catalog.New([]*domain.AnimalDrawing{drawing("rat", 1, 1), drawing("bat", 1, 1)})
	res := New(c).Resolve("xat")
	if res.Kind != KindSuggestion || res.Suggestion != "bat" {
		t.Fatalf("got %s %q, want suggestion bat", res.Kind, res.Suggestion)
	}
}

func TestMaxDistanceOption(t *testing.T) {
	r := scenario(t, WithMaxDistance(0))
	if res := r.Resolve("kat"); res.Kind != KindFallback {
		t.Fatalf("kind = %s, want fallback with max distance 0", res.Kind)
	}
}

func TestCategoryFallback(t *testing.T) {
	cats := catalog.Categories{
		"farm": {"cow", "pig"},
		"wild": {"unicorn"},
	}
	c := catalog.New([]*domain.AnimalDrawing{
		drawing("cat", 1, 1),
		drawing("cow", 2, 1),
		drawing("pig", 2, 1),
	})
	r := New(c, WithCategories(cats), WithRandom(rand.New(rand.NewSource(3))))

	res := r.Resolve("something from the farm")
	if res.Category != "farm" {
		t.Fatalf("category = %q", res.Category)
	}
	if got := names(res.Alternatives); len(got) != 2 || got[0] != "cow" || got[1] != "pig" {
		t.Fatalf("alternatives = %v", got)
	}

	// A category whose animals are all missing falls through to tier 1.
	res = r.Resolve("something wild")
	if res.Category != "" || len(res.Alternatives) != 1 || res.Alternatives[0].Key() != "cat" {
		t.Fatalf("unexpected wild fallback %+v", res)
	}
}

func TestFallbackWithoutTierOne(t *testing.T) {
	c := catalog.New([]*domain.AnimalDrawing{drawing("owl", 2, 1), drawing("lion", 3, 1), drawing("blob", 0, 1)})
	res := New(c).Resolve("qqqqqq")
	if len(res.Alternatives) != 1 || res.Alternatives[0].Key() != "owl" {
		t.Fatalf("expected lowest tier fallback, got %v", names(res.Alternatives))
	}
}

func TestFallbackSizeBound(t *testing.T) {
	var ds []*domain.AnimalDrawing
	for _, n := range []string{"ant", "bee", "cow", "doe", "eel", "fox"} {
		ds = append(ds, drawing(n, 1, 1))
	}
	r := New(catalog.New(ds), WithRandom(rand.New(rand.NewSource(9))))
	if res := r.Resolve("zzzzzz"); len(res.Alternatives) != DefaultFallbackSize {
		t.Fatalf("got %d alternatives, want %d", len(res.Alternatives), DefaultFallbackSize)
	}
	for _, tt := range []struct{ size, want int }{{1, 1}, {0, 1}, {6, MaxFallbackSize}} {
		r = New(catalog.New(ds), WithFallbackSize(tt.size))
		if res := r.Resolve("zzzzzz"); len(res.Alternatives) != tt.want {
			t.Errorf("WithFallbackSize(%d): got %d alternatives, want %d", tt.size, len(res.Alternatives), tt.want)
		}
	}
}

func TestEmptyCatalog(t *testing.T) {
	res := New(catalog.New(nil)).Resolve("cat")
	if res.Kind != KindFallback || len(res.Alternatives) != 0 {
		t.Fatalf("unexpected %+v", res)
	}
	if !errors.Is(res.Err(), domain.ErrNotFound) {
		t.Fatalf("Err() = %v, want ErrNotFound", res.Err())
	}
}

func TestRelatedTo(t *testing.T) {
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	r := New(c, WithRandom(rand.New(rand.NewSource(11))))

	allowed := map[string]bool{}
	cats := catalog.DefaultCategories()
	for _, l := range cats.CategoriesOf("duck") {
		for _, m := range cats.Members(l) {
			allowed[m] = true
		}
	}
	for i := 0; i < 10; i++ {
		got := r.RelatedTo("duck")
		if len(got) != 3 {
			t.Fatalf("expected 3 related animals, got %d", len(got))
		}
		for _, d := range got {
			if d.Key() == "duck" {
				t.Fatal("related animals must not include the animal itself")
			}
			if !allowed[d.Key()] {
				t.Fatalf("%s shares no category with duck", d.Key())
			}
		}
	}
}

func TestRelatedToTopsUpWithTier(t *testing.T) {
	c := catalog.New([]*domain.AnimalDrawing{
		drawing("cat", 1, 1), drawing("dog", 1, 1), drawing("pig", 1, 1), drawing("lion", 3, 1),
	})
	r := New(c, WithCategories(catalog.Categories{}), WithRandom(rand.New(rand.NewSource(5))))
	if got := names(r.RelatedTo("cat")); len(got) != 2 || got[0] != "dog" || got[1] != "pig" {
		t.Fatalf("RelatedTo(cat) = %v", got)
	}
	if got := r.RelatedTo("unicorn"); len(got) != 0 {
		t.Fatalf("unknown animal should have no relations, got %v", names(got))
	}
}

func TestConcurrentResolve(t *testing.T) {
	r := scenario(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Resolve("zzz")
				r.RelatedTo("cat")
			}
		}()
	}
	wg.Wait()
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"cat", "bat", 1},
		{"cat", "cat", 0},
		{"cat", "", 3},
		{"", "dog", 3},
		{"kitten", "sitting", 3},
		{"dg", "dog", 1},
		{"éléphant", "elephant", 2},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Distance(tt.b, tt.a); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Cat  ", "cat"},
		{"Big   Dog", "big dog"},
		{"ÉLÉPHANT", "\u00e9l\u00e9phant"},
		{"e\u0301le\u0301phant", "\u00e9l\u00e9phant"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
