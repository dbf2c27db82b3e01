package markup

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"doc.md", true},
		{"doc.markdown", true},
		{"DOC.MD", true},
		{"report.Markdown", true},
		{"doc.html", false},
		{"doc.htm", false},
		{"doc.md.html", false},
		{"md", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMarkdown(tt.path); got != tt.want {
			t.Errorf("IsMarkdown(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestToHTMLProducesCompleteDocument(t *testing.T) {
	c := NewGoldmarkConverter()

	out, err := c.ToHTML(context.Background(), "# Hello\n\nSome *emphasis*.")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta charset="utf-8">`,
		"<h1>Hello</h1>",
		"<em>emphasis</em>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	c := NewGoldmarkConverter()

	out, err := c.ToHTML(context.Background(), "before <script>alert(1)</script> after")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML was not escaped:\n%s", out)
	}
}

func TestToHTMLGFMTable(t *testing.T) {
	c := NewGoldmarkConverter()

	md := "| a | b |\n|---|---|\n| 1 | 2 |"
	out, err := c.ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("GFM table not rendered:\n%s", out)
	}
}

func TestToHTMLHighlightingUsesClasses(t *testing.T) {
	c := NewGoldmarkConverter()

	md := "```go\npackage main\n```"
	out, err := c.ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(out, "class=") {
		t.Errorf("highlighted block carries no CSS classes:\n%s", out)
	}
	if strings.Contains(out, "style=\"color") {
		t.Errorf("highlighting inlined styles instead of classes:\n%s", out)
	}
}

func TestToHTMLCanceledContext(t *testing.T) {
	c := NewGoldmarkConverter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ToHTML(ctx, "# Hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("ToHTML = %v, want context.Canceled", err)
	}
}
