package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	BuilderDockerfile = "dockerfile"
	RestartOnFailure  = "on-failure"
	RestartMaxRetries = 3
)

type RailwayManifest struct {
	Schema string        `json:"$schema,omitempty"`
	Build  RailwayBuild  `json:"build"`
	Deploy RailwayDeploy `json:"deploy"`
}

type RailwayBuild struct {
	Builder        string `json:"builder"`
	DockerfilePath string `json:"dockerfilePath,omitempty"`
}

type RailwayDeploy struct {
	RestartPolicyType       string `json:"restartPolicyType"`
	RestartPolicyMaxRetries int    `json:"restartPolicyMaxRetries"`
}

func ParseRailway(data []byte) (*RailwayManifest, error) {
	var m RailwayManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse railway manifest: %w", err)
	}
	return &m, nil
}

func LoadRailway(path string) (*RailwayManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read railway manifest: %w", err)
	}
	return ParseRailway(data)
}

// canonical lowers case and maps Railway's SNAKE_CASE enum spelling onto the
// hyphenated form, so DOCKERFILE and ON_FAILURE compare equal to the
// documented values.
func canonical(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

func (m *RailwayManifest) Validate() error {
	var problems []error

	if canonical(m.Build.Builder) != BuilderDockerfile {
		problems = append(problems, fmt.Errorf("build.builder must be %q, got %q", BuilderDockerfile, m.Build.Builder))
	}
	if canonical(m.Deploy.RestartPolicyType) != RestartOnFailure {
		problems = append(problems, fmt.Errorf("deploy.restartPolicyType must be %q, got %q", RestartOnFailure, m.Deploy.RestartPolicyType))
	}
	if m.Deploy.RestartPolicyMaxRetries != RestartMaxRetries {
		problems = append(problems, fmt.Errorf("deploy.restartPolicyMaxRetries must be %d, got %d", RestartMaxRetries, m.Deploy.RestartPolicyMaxRetries))
	}

	return errors.Join(problems...)
}
