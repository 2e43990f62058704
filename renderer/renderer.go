// Package renderer turns folio reports into markdown, and markdown into HTML.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/folio"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var files embed.FS

var templates, _ = fs.Sub(files, "templates")

var funcs = template.FuncMap{
	"pct":        func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"points":     func(v float64) string { return fmt.Sprintf("%+.2f", v) },
	"score":      func(v float64) string { return fmt.Sprintf("%.3f", v) },
	"shares":     func(q folio.Quantity) string { return q.Value().StringFixed(4) },
	"untargeted": untargeted,
}

// untargeted is true when some items are not in the plan.
func untargeted(items []folio.AllocationStatus) bool {
	for _, i := range items {
		if !i.Targeted {
			return true
		}
	}
	return false
}

// RenderPerformance renders a performance report.
func RenderPerformance(r *folio.PerformanceReport) (string, error) {
	partials := map[string]string{
		"performance_summary":     "performance_summary.md",
		"performance_instruments": "performance_instruments.md",
		"performance_periods":     "performance_periods.md",
	}
	return renderTemplate("performance", "performance.md", partials, r)
}

// RenderHoldings renders the holdings of a ledger replay.
func RenderHoldings(p folio.Projection) (string, error) {
	return renderTemplate("holdings", "holdings.md", nil, p)
}

// RenderComparison renders an allocation comparison.
func RenderComparison(c *folio.Comparison) (string, error) {
	return renderTemplate("comparison", "comparison.md", nil, c)
}

// RenderAllocation renders the purchases of a contribution.
func RenderAllocation(a *folio.Allocation) (string, error) {
	return renderTemplate("allocation", "allocation.md", nil, a)
}

// RenderPriorities renders an implementation order.
func RenderPriorities(ranked []folio.Ranked) (string, error) {
	return renderTemplate("priorities", "priorities.md", nil, ranked)
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) (string, error) {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return "", fmt.Errorf("error reading main template %q: %w", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return "", fmt.Errorf("error parsing main template %q: %w", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return "", fmt.Errorf("error reading partial template %q: %w", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return "", fmt.Errorf("error parsing partial template %q for %q: %w", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return "", fmt.Errorf("error executing template %q: %w", templateName, err)
	}
	return b.String(), nil
}

// HTML converts markdown into a standalone HTML page.
func HTML(title, markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("cannot convert markdown to html: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", template.HTMLEscapeString(title))
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
