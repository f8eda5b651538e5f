package bwcdkimagebuilder

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ComponentDocument is an Image Builder component document. It is rendered
// to the YAML the service expects.
type ComponentDocument struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase groups the steps of a build or test phase.
type Phase struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is a single action of a phase.
type Step struct {
	Name   string         `yaml:"name"`
	Action string         `yaml:"action"`
	Inputs map[string]any `yaml:"inputs"`
}

// ExecuteBash returns a step running commands with bash.
func ExecuteBash(name string, commands ...string) Step {
	return Step{
		Name:   name,
		Action: "ExecuteBash",
		Inputs: map[string]any{"commands": commands},
	}
}

// BuildComponent returns a document with a single build phase.
func BuildComponent(name, description string, steps ...Step) ComponentDocument {
	return ComponentDocument{
		Name:        name,
		Description: description,
		Phases:      []Phase{{Name: "build", Steps: steps}},
	}
}

// schemaVersion renders as the float 1.0; a Go float would marshal as 1.
type schemaVersion struct{}

func (schemaVersion) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "1.0"}, nil
}

// Render validates the document and marshals it to YAML.
func (d ComponentDocument) Render() (string, error) {
	if d.Name == "" {
		return "", errors.New("component document needs a name")
	}
	if len(d.Phases) == 0 {
		return "", errors.Newf("component %s has no phases", d.Name)
	}
	for _, phase := range d.Phases {
		if len(phase.Steps) == 0 {
			return "", errors.Newf("component %s: phase %q has no steps", d.Name, phase.Name)
		}
	}

	out, err := yaml.Marshal(struct {
		Name          string        `yaml:"name"`
		Description   string        `yaml:"description,omitempty"`
		SchemaVersion schemaVersion `yaml:"schemaVersion"`
		Phases        []Phase       `yaml:"phases"`
	}{d.Name, d.Description, schemaVersion{}, d.Phases})
	if err != nil {
		return "", errors.Wrapf(err, "failed to render component %s", d.Name)
	}
	return string(out), nil
}
