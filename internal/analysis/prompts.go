package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

type promptFile struct {
	Probe      string            `yaml:"probe"`
	Single     string            `yaml:"single"`
	Dimensions map[string]string `yaml:"dimensions"`
}

// promptData is what the templates see.
type promptData struct {
	Text  string
	Batch int
	Total int
}

// Prompts holds the parsed prompt templates.
type Prompts struct {
	probe      string
	single     *template.Template
	dimensions map[Dimension]*template.Template
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() *Prompts {
	p, err := ParsePrompts(defaultPromptsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in prompts: %v", err))
	}
	return p
}

// LoadPrompts reads a prompt file, or returns the built-in set when path is
// empty.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return ParsePrompts(data)
}

// ParsePrompts parses a YAML prompt set. Every dimension must be present and
// every template must render.
func ParsePrompts(data []byte) (*Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompts yaml: %w", err)
	}
	if strings.TrimSpace(f.Probe) == "" {
		return nil, fmt.Errorf("prompts: probe is empty")
	}

	p := &Prompts{
		probe:      strings.TrimSpace(f.Probe),
		dimensions: make(map[Dimension]*template.Template, len(Dimensions)),
	}

	var err error
	if p.single, err = parseTemplate("single", f.Single); err != nil {
		return nil, err
	}
	for _, d := range Dimensions {
		tmpl, err := parseTemplate(string(d), f.Dimensions[string(d)])
		if err != nil {
			return nil, err
		}
		p.dimensions[d] = tmpl
	}
	return p, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompts: %s template is empty", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("prompts: parse %s: %w", name, err)
	}
	if _, err := execute(tmpl, promptData{Text: "x", Batch: 1, Total: 1}); err != nil {
		return nil, fmt.Errorf("prompts: render %s: %w", name, err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

// Probe is the connectivity check prompt.
func (p *Prompts) Probe() string { return p.probe }

// Single builds the five-section due diligence prompt.
func (p *Prompts) Single(text string) (string, error) {
	return execute(p.single, promptData{Text: text})
}

// Batch builds the prompt for one dimension of batch i of total (1-based).
func (p *Prompts) Batch(d Dimension, text string, i, total int) (string, error) {
	tmpl, ok := p.dimensions[d]
	if !ok {
		return "", fmt.Errorf("no prompt for dimension %q", d)
	}
	return execute(tmpl, promptData{Text: text, Batch: i, Total: total})
}
