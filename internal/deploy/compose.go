// Package deploy validates the deployment manifests shipped with this
// service against the shape the hosting platforms expect.
package deploy

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"trellobot/internal/config"
)

const (
	ComposeVersion = "3.8"
	ServiceName    = "discord-bot"
	PortMapping    = "8080:8080"
	RestartPolicy  = "unless-stopped"
)

type ComposeFile struct {
	Version  string                    `yaml:"version"`
	Services map[string]ComposeService `yaml:"services"`
}

type ComposeService struct {
	Build       string   `yaml:"build"`
	Ports       []string `yaml:"ports"`
	Environment EnvBlock `yaml:"environment"`
	Restart     string   `yaml:"restart"`
}

// EnvBlock accepts both compose spellings of an environment block: a
// mapping of KEY: value and a sequence of KEY=value strings.
type EnvBlock map[string]string

func (e *EnvBlock) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		m := make(map[string]string)
		if err := value.Decode(&m); err != nil {
			return err
		}
		*e = m
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		m := make(map[string]string, len(items))
		for _, item := range items {
			key, val, _ := strings.Cut(item, "=")
			m[key] = val
		}
		*e = m
	default:
		return fmt.Errorf("unsupported environment block at line %d", value.Line)
	}
	return nil
}

func ParseCompose(data []byte) (*ComposeFile, error) {
	var f ComposeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}
	return &f, nil
}

func LoadCompose(path string) (*ComposeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file: %w", err)
	}
	return ParseCompose(data)
}

// Validate checks every constraint and reports all violations at once.
func (f *ComposeFile) Validate() error {
	var problems []error

	if f.Version != ComposeVersion {
		problems = append(problems, fmt.Errorf("version must be %q, got %q", ComposeVersion, f.Version))
	}
	if len(f.Services) != 1 {
		problems = append(problems, fmt.Errorf("expected exactly one service, got %d", len(f.Services)))
	}

	svc, ok := f.Services[ServiceName]
	if !ok {
		problems = append(problems, fmt.Errorf("service %q is not declared", ServiceName))
		return errors.Join(problems...)
	}

	if !slices.Contains(svc.Ports, PortMapping) {
		problems = append(problems, fmt.Errorf("service %q must map port %s", ServiceName, PortMapping))
	}
	if svc.Restart != RestartPolicy {
		problems = append(problems, fmt.Errorf("service %q restart policy must be %q, got %q", ServiceName, RestartPolicy, svc.Restart))
	}
	for _, name := range config.Required {
		if _, ok := svc.Environment[name]; !ok {
			problems = append(problems, fmt.Errorf("service %q is missing environment variable %s", ServiceName, name))
		}
	}

	return errors.Join(problems...)
}
