// Package notify delivers finished briefings by email.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/wonny/clientintel/internal/briefing"
	"github.com/wonny/clientintel/internal/contracts"
)

// RenderedMessage is a ready-to-send email
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Renderer turns a briefing into an HTML email with a markdown plain-text fallback
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer with the default briefing template
func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"pct":     func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
		"dollars": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	}
	t := template.Must(template.New("briefing").Funcs(funcs).Parse(briefingHTMLTemplate))
	return &Renderer{tmpl: t}
}

type templateData struct {
	B        *contracts.Briefing
	Analysis string
	Sources  string
}

// Render produces the subject, plain text and HTML bodies for b
func (r *Renderer) Render(b *contracts.Briefing) (*RenderedMessage, error) {
	if b == nil || b.Performance == nil {
		return nil, fmt.Errorf("render briefing: %w", contracts.ErrDataUnavailable)
	}

	data := templateData{
		B:        b,
		Analysis: analysis(b.Insights),
		Sources:  strings.Join(b.Sources, ", "),
	}

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: Subject(b),
		Text:    briefing.RenderMarkdown(b),
		HTML:    htmlBuf.String(),
	}, nil
}

// Subject is the email subject line for b
func Subject(b *contracts.Briefing) string {
	return fmt.Sprintf("Briefing: %s (%s) %s %s",
		b.Company, b.Ticker, b.Performance.ChangePercent(), b.GeneratedAt.UTC().Format("2006-01-02"))
}

func analysis(in *contracts.Insights) string {
	switch {
	case in == nil || in.Status == contracts.InsightsDisabled:
		return "AI analysis is not configured."
	case in.Status != contracts.InsightsOK:
		return "AI analysis is temporarily unavailable."
	default:
		return in.Summary
	}
}
