// Catalogtool checks and previews animal catalogs offline.
//
// Usage:
//
//	catalogtool validate [file]
//	catalogtool list [-catalog file] [-tier N]
//	catalogtool render -animal NAME [-step N] [-mode color|outline] [-format svg|png|text] [-size PX] [-o FILE]
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/hammamikhairi/ottodraw/internal/catalog"
	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
	"github.com/hammamikhairi/ottodraw/internal/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "validate":
		err = validate(args[1:], stdout)
	case "list":
		err = list(args[1:], stdout)
	case "render":
		err = renderCmd(args[1:], stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: catalogtool validate [file]")
	fmt.Fprintln(w, "       catalogtool list [-catalog file] [-tier N]")
	fmt.Fprintln(w, "       catalogtool render -animal NAME [-step N] [-mode color|outline] [-format svg|png|text] [-size PX] [-o FILE]")
}

var quiet = logger.New(logger.LevelOff, nil)

func load(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(catalog.WithLogger(quiet))
	}
	return catalog.LoadFile(path, catalog.WithLogger(quiet))
}

func validate(args []string, out io.Writer) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	cat, err := load(path)
	if err != nil {
		var de *domain.DecodeError
		if errors.As(err, &de) && de.Record >= 0 {
			return fmt.Errorf("invalid catalog: record %d is broken: %w", de.Record, err)
		}
		return err
	}

	steps, shapes := 0, 0
	for _, d := range cat.All() {
		steps += d.StepCount()
		for _, s := range d.Steps {
			shapes += len(s.Shapes)
		}
	}
	name := path
	if name == "" {
		name = "embedded catalog"
	}
	fmt.Fprintf(out, "%s: ok, %d animals, %d steps, %d shapes\n", name, cat.Len(), steps, shapes)
	return nil
}

func list(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("catalog", "", "catalog JSON (default: embedded)")
	tier := fs.Int("tier", 0, "only show this tier (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := load(*path)
	if err != nil {
		return err
	}
	drawings := cat.All()
	if *tier > 0 {
		drawings = cat.ByTier(*tier)
	}
	for _, d := range drawings {
		tierText := "-"
		if d.Tier != nil {
			tierText = fmt.Sprint(*d.Tier)
		}
		fmt.Fprintf(out, "%-12s tier %-2s %d steps\n", d.Name, tierText, d.StepCount())
	}
	return nil
}

func renderCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path := fs.String("catalog", "", "catalog JSON (default: embedded)")
	animal := fs.String("animal", "", "animal to render")
	step := fs.Int("step", 0, "render steps 1..N (0 = the whole drawing)")
	mode := render.ModeColor
	fs.Func("mode", "outline or color", func(s string) (err error) {
		mode, err = render.ParseMode(s)
		return err
	})
	scheme := render.SchemeDark
	fs.Func("scheme", "dark or light", func(s string) (err error) {
		scheme, err = render.ParseScheme(s)
		return err
	})
	format := fs.String("format", "svg", "svg, png or text")
	size := fs.Int("size", 512, "image size in pixels")
	outPath := fs.String("o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *animal == "" {
		return errors.New("render: -animal is required")
	}

	cat, err := load(*path)
	if err != nil {
		return err
	}
	d, ok := cat.Get(*animal)
	if !ok {
		return fmt.Errorf("animal %q: %w", *animal, domain.ErrNotFound)
	}
	cursor := d.StepCount() - 1
	if *step > 0 {
		cursor = *step - 1
	}
	prog := render.New(render.Options{Mode: mode, Scheme: scheme}).Render(d, cursor, *size, *size)

	var out io.Writer = stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return encode(out, prog, *format)
}

func encode(w io.Writer, p render.Program, format string) error {
	switch format {
	case "svg":
		_, err := io.WriteString(w, render.EncodeSVG(p))
		return err
	case "png":
		return png.Encode(w, render.Rasterize(p))
	case "text":
		_, err := io.WriteString(w, p.String())
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
