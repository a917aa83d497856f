package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"pycheck/internal/core/app"
	"pycheck/internal/engine/graph"
	"pycheck/internal/shared/util"
)

// Renderer writes one analysis report in a concrete output format.
type Renderer interface {
	Render(w io.Writer, report *app.Report) error
}

// Options select and parameterize a renderer. Dot output draws the graph
// itself, which the report alone does not carry; the other formats ignore
// Graph and Cycles.
type Options struct {
	Format string
	Color  bool
	Graph  *graph.ImportGraph
	Cycles *graph.CycleCache
}

// ForFormat returns the renderer for format. Formats are validated by the
// config layer; an unknown one here is a programming error.
func ForFormat(opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		return &TextRenderer{Color: opts.Color}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "sarif":
		return &SARIFRenderer{}, nil
	case "dot":
		if opts.Graph == nil {
			return nil, fmt.Errorf("dot output requires a completed run's graph")
		}
		return &DotRenderer{graph: opts.Graph, cycles: opts.Cycles}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// Write renders report to path, or to stdout when path is empty.
func Write(report *app.Report, opts Options, path string) error {
	renderer, err := ForFormat(opts)
	if err != nil {
		return err
	}

	if path == "" {
		return renderer.Render(os.Stdout, report)
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, report); err != nil {
		return err
	}
	return util.WriteFileWithDirs(path, buf.Bytes(), 0o644)
}
