// Package report renders scenario results as Markdown, HTML or wrapped text.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tessro/chimera/internal/scenario"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultWidth is the text report width when none is configured.
const DefaultWidth = 80

// pageTemplate wraps rendered report HTML in a standalone page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.75rem; text-align: left; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`

// PageData holds data passed to the HTML template.
type PageData struct {
	Title   string
	Content template.HTML
}

var (
	md = goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Linkify,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	page = template.Must(template.New("report").Parse(pageTemplate))
)

// Markdown renders res as a Markdown document with one table row per step.
func Markdown(res *scenario.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Scenario: %s\n\n", res.Scenario)
	fmt.Fprintf(&b, "- **Status:** %s\n", status(res))
	fmt.Fprintf(&b, "- **Elapsed:** %s\n", res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "- **Steps:** %d\n", len(res.Steps))
	if len(res.Failed) > 0 {
		fmt.Fprintf(&b, "- **Failed jobs:** %s\n", strings.Join(res.Failed, ", "))
	}

	b.WriteString("\n| # | At | Step | Job | Error |\n")
	b.WriteString("|---|----|------|-----|-------|\n")
	for i, s := range res.Steps {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, s.At.Round(time.Millisecond), s.Kind, cell(s.Job), cell(s.Err))
	}
	return b.String()
}

// HTML renders res as a standalone HTML page.
func HTML(res *scenario.Result) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(res)), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	var out bytes.Buffer
	data := PageData{
		Title:   "Scenario: " + res.Scenario,
		Content: template.HTML(body.String()),
	}
	if err := page.Execute(&out, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return out.String(), nil
}

// Text renders res as plain text wrapped to width columns.
// A width below 20 uses DefaultWidth.
func Text(res *scenario.Result, width int) string {
	if width < 20 {
		width = DefaultWidth
	}

	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s: %s in %s\n", res.Scenario, status(res), res.Elapsed.Round(time.Millisecond))

	var steps strings.Builder
	for _, s := range res.Steps {
		line := fmt.Sprintf("%8s  %-10s %s", s.At.Round(time.Millisecond), s.Kind, s.Job)
		if s.Err != "" {
			line += " (" + s.Err + ")"
		}
		steps.WriteString(line + "\n")
	}
	b.WriteString(indent.String(wordwrap.String(steps.String(), width-2), 2))

	if len(res.Failed) > 0 {
		b.WriteString(wordwrap.String("failed: "+strings.Join(res.Failed, ", "), width))
		b.WriteString("\n")
	}
	return b.String()
}

func status(res *scenario.Result) string {
	switch {
	case !res.Complete:
		return "incomplete"
	case len(res.Failed) > 0:
		return "complete with failures"
	default:
		return "complete"
	}
}

// cell escapes pipes so values cannot break the Markdown table.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
