package diag

import (
	"fmt"
	"os"
	"strings"
)

// IsValid reports whether the span carries real source location data.
func (s Span) IsValid() bool { return s.Line > 0 }

func (s Span) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// Formatter formats diagnostics in a Rust-style format with source code
// snippets, caching loaded sources across calls.
type Formatter struct {
	sourceCache map[string]string
}

func NewFormatter() *Formatter {
	return &Formatter{sourceCache: make(map[string]string)}
}

func (f *Formatter) loadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format prints a diagnostic with a source snippet and caret underline when
// the source file is available, falling back to a plain one-liner otherwise.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)

	if d.Span.IsValid() {
		src, err := f.loadSource(d.Span.Filename)
		if err == nil && src != "" {
			f.printSnippet(src, d.Span)
		} else {
			fmt.Fprintf(os.Stderr, "  --> %s\n", d.Span.String())
		}
	}

	if d.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nhelp: %s\n", d.Suggestion)
	}
}

func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = string(SeverityError)
	}
	if d.Code != "" {
		fmt.Fprintf(os.Stderr, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", severity, d.Message)
	}
}

func (f *Formatter) printSnippet(src string, span Span) {
	lines := strings.Split(src, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		fmt.Fprintf(os.Stderr, "  --> %s\n", span.String())
		return
	}

	lineContent := lines[span.Line-1]
	lineNumWidth := len(fmt.Sprintf("%d", span.Line))

	fmt.Fprintf(os.Stderr, "  --> %s\n", span.String())
	fmt.Fprintf(os.Stderr, "   %s |\n", strings.Repeat(" ", lineNumWidth))
	fmt.Fprintf(os.Stderr, " %d | %s\n", span.Line, lineContent)

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	col := span.Column - 1
	if col < 0 {
		col = 0
	}
	underline := strings.Repeat(" ", col) + strings.Repeat("^", width)
	fmt.Fprintf(os.Stderr, "   %s | %s\n", strings.Repeat(" ", lineNumWidth), underline)
}
