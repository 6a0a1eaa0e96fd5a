// Package render turns GeneratedContent into publishable HTML. Rendering is
// pure and deterministic: the same content always yields the same markup.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"blogsmith/internal/core"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// HTML renders the content as an article body. The template type controls
// which optional blocks appear; unknown types render like evergreen without
// the table of contents.
func HTML(gc *core.GeneratedContent, tt core.TemplateType) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(gc.Title))
	if gc.Introduction != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(gc.Introduction))
	}

	if tt == core.TemplateEvergreen && len(gc.TableOfContents) > 0 {
		b.WriteString(`<nav class="toc"><ul>` + "\n")
		for _, entry := range gc.TableOfContents {
			fmt.Fprintf(&b, `<li><a href="#%s">%s</a></li>`+"\n", Slugify(entry), html.EscapeString(entry))
		}
		b.WriteString("</ul></nav>\n")
	}

	if tt == core.TemplateHowTo && len(gc.Prerequisites) > 0 {
		b.WriteString(`<section class="prerequisites"><h2>Prerequisites</h2><ul>` + "\n")
		for _, p := range gc.Prerequisites {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(p))
		}
		b.WriteString("</ul></section>\n")
	}

	if tt == core.TemplateComparison && gc.ComparisonTable != nil && len(gc.ComparisonTable.Headers) > 0 {
		renderComparisonTable(&b, gc.ComparisonTable)
	}

	if tt == core.TemplateLocal && gc.LocalInfo != nil && gc.LocalInfo.Location != "" {
		b.WriteString(`<section class="local-info">` + "\n")
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(gc.LocalInfo.Location))
		if gc.LocalInfo.Description != "" {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(gc.LocalInfo.Description))
		}
		b.WriteString("</section>\n")
	}

	for _, s := range gc.Sections {
		renderSection(&b, s)
	}

	if gc.Conclusion != "" {
		b.WriteString("<h2>Conclusion</h2>\n")
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(gc.Conclusion))
	}

	if len(gc.FAQ) > 0 {
		b.WriteString(`<section class="faq"><h2>Frequently Asked Questions</h2>` + "\n")
		for _, item := range gc.FAQ {
			fmt.Fprintf(&b, "<h3>%s</h3>\n<p>%s</p>\n",
				html.EscapeString(item.Question), html.EscapeString(item.Answer))
		}
		b.WriteString("</section>\n")
	}

	if gc.CallToAction != nil && gc.CallToAction.Text != "" {
		if gc.CallToAction.URL != "" {
			fmt.Fprintf(&b, `<p class="cta"><a href="%s">%s</a></p>`+"\n",
				html.EscapeString(gc.CallToAction.URL), html.EscapeString(gc.CallToAction.Text))
		} else {
			fmt.Fprintf(&b, `<p class="cta">%s</p>`+"\n", html.EscapeString(gc.CallToAction.Text))
		}
	}

	return b.String()
}

func renderSection(b *strings.Builder, s core.Section) {
	if s.Heading != "" {
		fmt.Fprintf(b, `<h2 id="%s">%s</h2>`+"\n", Slugify(s.Heading), html.EscapeString(s.Heading))
	}
	if s.Content != "" {
		fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(s.Content))
	}
	for _, sub := range s.Subsections {
		if sub.Heading != "" {
			fmt.Fprintf(b, "<h3>%s</h3>\n", html.EscapeString(sub.Heading))
		}
		if sub.Content != "" {
			fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(sub.Content))
		}
		if len(sub.ListItems) > 0 {
			b.WriteString("<ul>\n")
			for _, item := range sub.ListItems {
				fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(item))
			}
			b.WriteString("</ul>\n")
		}
	}
}

func renderComparisonTable(b *strings.Builder, t *core.ComparisonTable) {
	b.WriteString(`<table class="comparison">` + "\n<thead><tr>")
	for _, h := range t.Headers {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for i := 0; i < len(t.Headers); i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody></table>\n")
}
