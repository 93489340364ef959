// Package manifest parses and validates plugin manifests. A manifest is
// metadata the embedding client hands to the host alongside a plugin
// instance; how its bytes reach the client (disk, archive, network) is the
// client's business.
package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/emberclient/emberclient/pkg/sdk"
)

// Manifest describes a plugin to the host.
type Manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// SDK is the "major.minor" SDK revision the plugin was built against.
	SDK string `yaml:"sdk"`
	// Events lists the event ids the plugin intends to listen to.
	// Informational; listeners still register explicitly.
	Events []string `yaml:"events,omitempty"`
	// Capabilities lists the capability id patterns the plugin answers
	// through its query interface. The host publishes them on registration.
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// maxNameLength is the maximum allowed length for plugin names.
const maxNameLength = 64

// namePattern validates plugin names: must start with a lowercase letter,
// followed by lowercase letters, digits, or hyphens, and not end with a
// hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// Parse parses and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return fmt.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return fmt.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not semver: %w", m.Version, err)
	}

	if m.SDK == "" {
		return fmt.Errorf("sdk is required")
	}
	if _, err := m.SDKVersion(); err != nil {
		return err
	}

	for i, ev := range m.Events {
		if ev == "" {
			return fmt.Errorf("events[%d]: event id cannot be empty", i)
		}
	}
	for i, c := range m.Capabilities {
		if c == "" {
			return fmt.Errorf("capabilities[%d]: capability pattern cannot be empty", i)
		}
	}

	return nil
}

// SDKVersion parses the declared "major.minor" SDK revision.
func (m *Manifest) SDKVersion() (sdk.Version, error) {
	major, minor, ok := strings.Cut(m.SDK, ".")
	if !ok {
		return sdk.Version{}, fmt.Errorf("sdk %q must be in major.minor form", m.SDK)
	}
	maj, err := strconv.Atoi(major)
	if err != nil || maj < 0 {
		return sdk.Version{}, fmt.Errorf("sdk %q has an invalid major revision", m.SDK)
	}
	min, err := strconv.Atoi(minor)
	if err != nil || min < 0 {
		return sdk.Version{}, fmt.Errorf("sdk %q has an invalid minor revision", m.SDK)
	}
	return sdk.Version{Major: maj, Minor: min}, nil
}
