// Package render resolves Liquid merge tags in probe templates.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/osteele/liquid"
)

// Renderer renders EmailTemplates with the Liquid language. Parsed
// templates are cached by source text. Safe for concurrent use.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// New creates a Renderer with the merge-tag filters used in templates.
func New() *Renderer {
	r := &Renderer{engine: liquid.NewEngine()}
	r.registerFilters()
	return r
}

func (r *Renderer) registerFilters() {
	// {{ first_name | default: "Friend" }}
	r.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	// {{ email | email_domain }}
	r.engine.RegisterFilter("email_domain", func(email string) string {
		return domain.DomainOf(email)
	})

	// {{ name | capitalize }}
	r.engine.RegisterFilter("capitalize", func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	})
}

// Render returns a copy of t with subject, HTML and text parts rendered
// against data. The input template is not modified.
func (r *Renderer) Render(t domain.EmailTemplate, data map[string]any) (domain.EmailTemplate, error) {
	out := t
	var err error
	if out.Subject, err = r.renderString(t.Subject, data); err != nil {
		return t, fmt.Errorf("subject: %w", err)
	}
	if out.HTMLContent, err = r.renderString(t.HTMLContent, data); err != nil {
		return t, fmt.Errorf("html: %w", err)
	}
	if out.TextContent, err = r.renderString(t.TextContent, data); err != nil {
		return t, fmt.Errorf("text: %w", err)
	}
	return out, nil
}

func (r *Renderer) renderString(src string, data map[string]any) (string, error) {
	if !strings.Contains(src, "{{") && !strings.Contains(src, "{%") {
		return src, nil
	}

	var tpl *liquid.Template
	if cached, ok := r.cache.Load(src); ok {
		tpl = cached.(*liquid.Template)
	} else {
		parsed, err := r.engine.ParseString(src)
		if err != nil {
			return "", err
		}
		r.cache.Store(src, parsed)
		tpl = parsed
	}

	out, err := tpl.RenderString(data)
	if err != nil {
		return "", err
	}
	return out, nil
}
