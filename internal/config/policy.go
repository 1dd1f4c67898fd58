package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy lists the systems and metrics the background checker monitors.
type Policy struct {
	Systems []SystemPolicy `yaml:"systems"`
}

// SystemPolicy configures drift monitoring for one system. An empty
// Metrics list means all six fairness metrics; Window overrides the
// global drift window size when positive.
type SystemPolicy struct {
	Name    string   `yaml:"name"`
	Metrics []string `yaml:"metrics,omitempty"`
	Window  int      `yaml:"window,omitempty"`
}

// LoadPolicy reads a monitoring policy from a YAML file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read policy %s", path)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "config: parse policy")
	}
	if len(p.Systems) == 0 {
		return nil, eris.New("config: policy lists no systems")
	}
	for i, s := range p.Systems {
		if s.Name == "" {
			return nil, eris.Errorf("config: policy system %d has no name", i)
		}
	}
	return &p, nil
}
