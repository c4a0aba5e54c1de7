package nimbus

import (
	"fmt"
	"strings"
	"text/template"
)

// templateText holds the data for a single message template.
type templateText struct {
	role     Role
	template string
	vars     map[string]any
}

// PromptTemplate builds a Prompt from formatted system and user templates.
// It supports fluent chaining, for example:
//
//	prompt, err := NewPromptTemplate().
//		System(sysTmpl, params).
//		User(userTmpl, params).
//		Build()
type PromptTemplate struct {
	tmpls []*templateText
}

// NewPromptTemplate creates an empty PromptTemplate.
func NewPromptTemplate() *PromptTemplate {
	return &PromptTemplate{}
}

// System appends a system message template with its variables.
func (p *PromptTemplate) System(tmpl string, vars map[string]any) *PromptTemplate {
	p.tmpls = append(p.tmpls, &templateText{role: RoleSystem, template: tmpl, vars: vars})
	return p
}

// User appends a user message template with its variables.
func (p *PromptTemplate) User(tmpl string, vars map[string]any) *PromptTemplate {
	p.tmpls = append(p.tmpls, &templateText{role: RoleUser, template: tmpl, vars: vars})
	return p
}

// Build renders all templates and returns the resulting Prompt.
func (p *PromptTemplate) Build() (*Prompt, error) {
	messages := make([]*Message, 0, len(p.tmpls))
	for i, tt := range p.tmpls {
		t, err := template.New(fmt.Sprintf("prompt_%d", i)).Option("missingkey=error").Parse(tt.template)
		if err != nil {
			return nil, fmt.Errorf("prompt template %d: %w", i, err)
		}
		var buf strings.Builder
		if err := t.Execute(&buf, tt.vars); err != nil {
			return nil, fmt.Errorf("prompt template %d: %w", i, err)
		}
		messages = append(messages, NewTextMessage(tt.role, buf.String()))
	}
	return NewPrompt(messages...), nil
}
