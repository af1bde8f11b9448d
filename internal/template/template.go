// Package template renders the user supplied text of generated files.
package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/origadmin/buildit/internal/types"
)

// HeaderData is the data passed to the header template.
type HeaderData struct {
	Application string
	Version     string
	// Package is the name of the generated package.
	Package string
	// Path is the import path of the generated package.
	Path string
	// File is the base name of the generated file.
	File string
}

// Manager holds parsed templates. The sprig functions are available to every
// template.
type Manager struct {
	tmpl *template.Template
}

// NewManager creates an empty template manager.
func NewManager() *Manager {
	return &Manager{tmpl: template.New(types.Application).Funcs(sprig.TxtFuncMap()).Option("missingkey=error")}
}

// Parse registers text under name, replacing a previous definition.
func (m *Manager) Parse(name, text string) error {
	if _, err := m.tmpl.New(name).Parse(text); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return nil
}

// Render executes the named template with the given data.
func (m *Manager) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// HeaderName is the name of the header template.
const HeaderName = "header"

// Header parses and renders a header template in one step.
func Header(text string, data HeaderData) (string, error) {
	m := NewManager()
	if err := m.Parse(HeaderName, text); err != nil {
		return "", err
	}
	out, err := m.Render(HeaderName, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
