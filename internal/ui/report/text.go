package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pycheck/internal/core/app"
	"pycheck/internal/engine/rules"
)

// TextRenderer writes human-readable diagnostics with source context, one
// block per finding. Color is plain ANSI so output stays greppable when
// piped through less -R.
type TextRenderer struct {
	Color bool
}

var titleCaser = cases.Title(language.AmericanEnglish)

func (r *TextRenderer) Render(w io.Writer, report *app.Report) error {
	sources := make(map[string][]string)

	for _, warning := range report.Warnings {
		if _, err := fmt.Fprintf(w, "%swarning:%s %s\n", r.col(33, true), r.reset(), warning); err != nil {
			return err
		}
	}
	if len(report.Warnings) > 0 && len(report.Diagnostics) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	for i, diag := range report.Diagnostics {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, r.renderDiagnostic(report.Root, diag, sources)); err != nil {
			return err
		}
	}

	if len(report.Diagnostics) > 0 || len(report.Warnings) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, r.summary(report))
	return err
}

func (r *TextRenderer) renderDiagnostic(root string, diag rules.Diagnostic, sources map[string][]string) string {
	color := severityColor(diag.Severity)
	level := titleCaser.String(string(diag.Severity))
	path := relPath(root, diag.Location.File)

	head := fmt.Sprintf("%s%s%s %s[%s %s]%s at %s:%d:%d\n",
		r.col(color, true), level, r.reset(),
		r.col(90, false), diag.Rule, diag.Name, r.reset(),
		path, diag.Location.Line, diag.Location.Column)

	lines := r.sourceLines(diag.Location.File, sources)
	line := diag.Location.Line
	if line < 1 || line > len(lines) {
		return head + fmt.Sprintf("  %s%s%s\n", r.col(color, false), diag.Message, r.reset())
	}

	var b strings.Builder
	b.WriteString(head)
	if line > 1 {
		b.WriteString(r.gutter(line-1, lines[line-2]))
	}
	b.WriteString(r.gutter(line, lines[line-1]))
	b.WriteString(fmt.Sprintf("%s%s^%s\n", strings.Repeat(" ", diag.Location.Column+6), r.col(color, true), r.reset()))
	if line < len(lines) {
		b.WriteString(r.gutter(line+1, lines[line]))
	}
	b.WriteString(fmt.Sprintf("\n%s%s%s\n", r.col(color, true), diag.Message, r.reset()))
	return b.String()
}

func (r *TextRenderer) gutter(line int, content string) string {
	return fmt.Sprintf(" %s%- 3d |%s %s\n", r.col(90, false), line, r.reset(), content)
}

func (r *TextRenderer) summary(report *app.Report) string {
	errors, warnings := report.Counts()
	stats := fmt.Sprintf("checked %d %s (%d %s, %d %s)",
		report.Files, plural(report.Files, "file"),
		report.Modules, plural(report.Modules, "module"),
		report.Edges, plural(report.Edges, "import"))

	if errors == 0 && warnings == 0 {
		return fmt.Sprintf("%s: %sno issues found%s\n", stats, r.col(32, true), r.reset())
	}

	parts := make([]string, 0, 3)
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%s%d %s%s", r.col(31, true), errors, plural(errors, "error"), r.reset()))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%s%d %s%s", r.col(33, true), warnings, plural(warnings, "warning"), r.reset()))
	}
	if report.Cyclic > 0 {
		parts = append(parts, fmt.Sprintf("%d cyclic %s", report.Cyclic, plural(report.Cyclic, "module")))
	}
	return fmt.Sprintf("%s: %s\n", stats, strings.Join(parts, ", "))
}

// sourceLines reads and caches the file backing a diagnostic. A file that
// cannot be read anymore just loses its context block.
func (r *TextRenderer) sourceLines(path string, sources map[string][]string) []string {
	if lines, ok := sources[path]; ok {
		return lines
	}
	data, err := os.ReadFile(path)
	if err != nil {
		sources[path] = nil
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	sources[path] = lines
	return lines
}

func (r *TextRenderer) col(color uint8, bold bool) string {
	if !r.Color {
		return ""
	}
	if bold {
		return fmt.Sprintf("\x1b[1;%dm", color)
	}
	return fmt.Sprintf("\x1b[%dm", color)
}

func (r *TextRenderer) reset() string {
	if !r.Color {
		return ""
	}
	return "\x1b[0m"
}

func severityColor(sev rules.Severity) uint8 {
	if sev == rules.SeverityError {
		return 31
	}
	return 33
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

// relPath shortens an absolute path to one relative to root for display.
func relPath(root, path string) string {
	if root == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
