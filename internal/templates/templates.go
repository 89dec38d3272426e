// Package templates renders the notification emails sent for each
// submission kind and recipient role.
package templates

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/hexsyn/intake/internal/model"
)

// Content is a rendered email
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Data is what every template is executed against
type Data struct {
	AppName     string
	Submission  *model.Submission
	Form        model.Form
	SubmittedAt string
	ResumeLink  string
	Year        int
}

// Renderer renders one kind/role template
type Renderer struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
	appName string
}

// Render executes the template against sub
func (r *Renderer) Render(sub *model.Submission) (Content, error) {
	d := Data{
		AppName:     r.appName,
		Submission:  sub,
		Form:        sub.Form,
		SubmittedAt: sub.SubmittedAt.Format("January 2, 2006 at 3:04 PM MST"),
		ResumeLink:  sub.ResumeLink(),
		Year:        sub.SubmittedAt.Year(),
	}

	var subject, html, text bytes.Buffer
	if err := r.subject.Execute(&subject, d); err != nil {
		return Content{}, fmt.Errorf("render subject: %w", err)
	}
	if err := r.html.ExecuteTemplate(&html, "layout", d); err != nil {
		return Content{}, fmt.Errorf("render html: %w", err)
	}
	if err := r.text.Execute(&text, d); err != nil {
		return Content{}, fmt.Errorf("render text: %w", err)
	}

	return Content{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()) + "\n",
	}, nil
}

type key struct {
	kind model.Kind
	role model.Role
}

// Registry holds a renderer for every supported kind/role pair
type Registry struct {
	renderers map[key]*Renderer
}

type source struct {
	kind    model.Kind
	role    model.Role
	subject string
	html    string
	text    string
}

var funcs = map[string]any{
	"join": strings.Join,
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	},
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}

// New parses every template. appName is shown in greetings and footers.
func New(appName string) (*Registry, error) {
	layout, err := htmltemplate.New("layout").Funcs(funcs).Parse(layoutHTML)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	reg := &Registry{renderers: make(map[key]*Renderer, len(sources))}
	for _, src := range sources {
		name := fmt.Sprintf("%s/%s", src.kind, src.role)

		subject, err := texttemplate.New(name + ".subject").Funcs(funcs).Parse(src.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}

		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		html, err := clone.Parse(src.html)
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}

		text, err := texttemplate.New(name + ".text").Funcs(funcs).Parse(src.text)
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}

		reg.renderers[key{src.kind, src.role}] = &Renderer{
			subject: subject,
			html:    html,
			text:    text,
			appName: appName,
		}
	}
	return reg, nil
}

// Lookup returns the renderer for kind and role
func (r *Registry) Lookup(kind model.Kind, role model.Role) (*Renderer, bool) {
	rd, ok := r.renderers[key{kind, role}]
	return rd, ok
}

// Render is a convenience for Lookup followed by Render
func (r *Registry) Render(kind model.Kind, role model.Role, sub *model.Submission) (Content, error) {
	rd, ok := r.Lookup(kind, role)
	if !ok {
		return Content{}, fmt.Errorf("no template for %s/%s", kind, role)
	}
	return rd.Render(sub)
}

const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{template "title" .}}</title>
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;background-color:#f4f5f7;">
<table width="100%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:40px 0;">
<tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;box-shadow:0 2px 8px rgba(0,0,0,0.08);">
  <tr><td style="padding:32px 40px 16px;">
    <h1 style="margin:0;font-size:22px;color:#1a1a2e;">{{template "title" .}}</h1>
  </td></tr>
  <tr><td style="padding:0 40px 32px;font-size:15px;color:#4a4a68;line-height:1.6;">
    {{template "body" .}}
  </td></tr>
  <tr><td style="padding:16px 40px;background-color:#f9f9fc;border-top:1px solid #eeeef2;">
    <p style="margin:0;font-size:12px;color:#aaaabc;text-align:center;">
      &copy; {{.Year}} {{.AppName}} &middot; Submitted {{.SubmittedAt}} &middot; Ref {{.Submission.ID}}
    </p>
  </td></tr>
</table>
</td></tr>
</table>
</body>
</html>`
