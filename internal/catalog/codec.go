package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// Validation failures reported inside a domain.DecodeError.
var (
	ErrMissingField   = errors.New("missing required field")
	ErrNoSteps        = errors.New("drawing has no steps")
	ErrNegativeLength = errors.New("length must not be negative")
)

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// wireShape carries every variant's fields; Type selects which apply.
type wireShape struct {
	Type    string      `json:"type"`
	Center  *wirePoint  `json:"center,omitempty"`
	Radius  *float64    `json:"radius,omitempty"`
	RadiusX *float64    `json:"radiusX,omitempty"`
	RadiusY *float64    `json:"radiusY,omitempty"`
	Origin  *wirePoint  `json:"origin,omitempty"`
	Side    *float64    `json:"side,omitempty"`
	Size    *wireSize   `json:"size,omitempty"`
	P1      *wirePoint  `json:"p1,omitempty"`
	P2      *wirePoint  `json:"p2,omitempty"`
	P3      *wirePoint  `json:"p3,omitempty"`
	From    *wirePoint  `json:"from,omitempty"`
	To      *wirePoint  `json:"to,omitempty"`
	Points  []wirePoint `json:"points,omitempty"`
}

type wireStep struct {
	Instruction string      `json:"instruction"`
	Shapes      []wireShape `json:"shapes"`
}

type wireAnimal struct {
	Name       string     `json:"name"`
	Tier       *int       `json:"tier"`
	Difficulty *string    `json:"difficulty"`
	Steps      []wireStep `json:"steps"`
}

type wireDocument struct {
	Animals []wireAnimal `json:"animals"`
}

// Decode parses an asset document: either a top-level array of records
// or an object with an "animals" array. Any malformed record fails the
// whole document, and so does a document with no records.
func Decode(data []byte) ([]*domain.AnimalDrawing, error) {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil, &domain.DecodeError{Record: -1, Err: errors.New("empty document")}
	}

	var records []wireAnimal
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, &domain.DecodeError{Record: -1, Err: err}
		}
	case '{':
		var doc wireDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &domain.DecodeError{Record: -1, Err: err}
		}
		if doc.Animals == nil {
			return nil, &domain.DecodeError{Record: -1, Field: "animals", Err: ErrMissingField}
		}
		records = doc.Animals
	default:
		return nil, &domain.DecodeError{Record: -1, Err: fmt.Errorf("expected array or object, got %q", raw[0])}
	}
	if len(records) == 0 {
		return nil, &domain.DecodeError{Record: -1, Err: domain.ErrEmptyCatalog}
	}

	out := make([]*domain.AnimalDrawing, 0, len(records))
	for i, rec := range records {
		d, err := decodeRecord(i, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeRecord(i int, rec wireAnimal) (*domain.AnimalDrawing, error) {
	name := strings.TrimSpace(rec.Name)
	fail := func(field string, err error) error {
		return &domain.DecodeError{Record: i, Name: name, Field: field, Err: err}
	}

	if name == "" {
		return nil, fail("name", ErrMissingField)
	}
	if len(rec.Steps) == 0 {
		return nil, fail("steps", ErrNoSteps)
	}

	d := &domain.AnimalDrawing{Name: name, Tier: rec.Tier}
	if rec.Difficulty != nil {
		d.Difficulty = *rec.Difficulty
	}

	for j, ws := range rec.Steps {
		if strings.TrimSpace(ws.Instruction) == "" {
			return nil, fail(fmt.Sprintf("steps[%d].instruction", j), ErrMissingField)
		}
		step := domain.Step{Instruction: ws.Instruction, Shapes: make([]domain.Shape, 0, len(ws.Shapes))}
		for k, wsh := range ws.Shapes {
			s, field, err := decodeShape(wsh)
			if err != nil {
				return nil, fail(fmt.Sprintf("steps[%d].shapes[%d].%s", j, k, field), err)
			}
			step.Shapes = append(step.Shapes, s)
		}
		d.Steps = append(d.Steps, step)
	}
	return d, nil
}

// decodeShape returns the shape, or the offending field name and error.
func decodeShape(w wireShape) (domain.Shape, string, error) {
	kind, ok := domain.ShapeKindFromString(w.Type)
	if !ok {
		return nil, "type", fmt.Errorf("%w %q", domain.ErrUnknownShape, w.Type)
	}

	var f fields
	switch kind {
	case domain.KindCircle:
		c := domain.Circle{Center: f.point("center", w.Center), Radius: f.length("radius", w.Radius)}
		return c, f.field, f.err
	case domain.KindEllipse:
		e := domain.Ellipse{
			Center:  f.point("center", w.Center),
			RadiusX: f.length("radiusX", w.RadiusX),
			RadiusY: f.length("radiusY", w.RadiusY),
		}
		return e, f.field, f.err
	case domain.KindSquare:
		s := domain.Square{Origin: f.point("origin", w.Origin), Side: f.length("side", w.Side)}
		return s, f.field, f.err
	case domain.KindRectangle:
		r := domain.Rectangle{Origin: f.point("origin", w.Origin)}
		if w.Size == nil {
			f.fail("size", ErrMissingField)
		} else if w.Size.Width < 0 || w.Size.Height < 0 {
			f.fail("size", ErrNegativeLength)
		} else {
			r.Size = domain.Size{Width: w.Size.Width, Height: w.Size.Height}
		}
		return r, f.field, f.err
	case domain.KindTriangle:
		t := domain.Triangle{P1: f.point("p1", w.P1), P2: f.point("p2", w.P2), P3: f.point("p3", w.P3)}
		return t, f.field, f.err
	case domain.KindLine:
		l := domain.Line{From: f.point("from", w.From), To: f.point("to", w.To)}
		return l, f.field, f.err
	case domain.KindPolyline:
		if len(w.Points) == 0 {
			return nil, "points", ErrMissingField
		}
		pts := make([]domain.Point, len(w.Points))
		for i, p := range w.Points {
			pts[i] = domain.Point{X: p.X, Y: p.Y}
		}
		return domain.Polyline{Points: pts}, "", nil
	}
	return nil, "type", fmt.Errorf("%w %q", domain.ErrUnknownShape, w.Type)
}

// fields records the first missing or invalid field while a shape is
// assembled.
type fields struct {
	field string
	err   error
}

func (f *fields) fail(name string, err error) {
	if f.err == nil {
		f.field, f.err = name, err
	}
}

func (f *fields) point(name string, p *wirePoint) domain.Point {
	if p == nil {
		f.fail(name, ErrMissingField)
		return domain.Point{}
	}
	return domain.Point{X: p.X, Y: p.Y}
}

func (f *fields) length(name string, v *float64) float64 {
	switch {
	case v == nil:
		f.fail(name, ErrMissingField)
		return 0
	case *v < 0:
		f.fail(name, ErrNegativeLength)
		return 0
	}
	return *v
}

// Encode writes drawings in the asset format as an indented JSON array.
func Encode(drawings []*domain.AnimalDrawing) ([]byte, error) {
	records := make([]wireAnimal, 0, len(drawings))
	for _, d := range drawings {
		rec := wireAnimal{Name: d.Name, Tier: d.Tier}
		if d.Difficulty != "" {
			diff := d.Difficulty
			rec.Difficulty = &diff
		}
		for j, st := range d.Steps {
			ws := wireStep{Instruction: st.Instruction, Shapes: make([]wireShape, 0, len(st.Shapes))}
			for k, s := range st.Shapes {
				w, err := encodeShape(s)
				if err != nil {
					return nil, fmt.Errorf("encoding %s step %d shape %d: %w", d.Name, j, k, err)
				}
				ws.Shapes = append(ws.Shapes, w)
			}
			rec.Steps = append(rec.Steps, ws)
		}
		records = append(records, rec)
	}
	return json.MarshalIndent(records, "", "  ")
}

func encodeShape(s domain.Shape) (wireShape, error) {
	w := wireShape{Type: s.Kind().String()}
	switch v := s.(type) {
	case domain.Circle:
		w.Center, w.Radius = wp(v.Center), fp(v.Radius)
	case domain.Ellipse:
		w.Center, w.RadiusX, w.RadiusY = wp(v.Center), fp(v.RadiusX), fp(v.RadiusY)
	case domain.Square:
		w.Origin, w.Side = wp(v.Origin), fp(v.Side)
	case domain.Rectangle:
		w.Origin = wp(v.Origin)
		w.Size = &wireSize{Width: v.Size.Width, Height: v.Size.Height}
	case domain.Triangle:
		w.P1, w.P2, w.P3 = wp(v.P1), wp(v.P2), wp(v.P3)
	case domain.Line:
		w.From, w.To = wp(v.From), wp(v.To)
	case domain.Polyline:
		w.Points = make([]wirePoint, len(v.Points))
		for i, p := range v.Points {
			w.Points[i] = wirePoint{X: p.X, Y: p.Y}
		}
	default:
		return wireShape{}, fmt.Errorf("%w %T", domain.ErrUnknownShape, s)
	}
	return w, nil
}

func wp(p domain.Point) *wirePoint { return &wirePoint{X: p.X, Y: p.Y} }
func fp(v float64) *float64        { return &v }
