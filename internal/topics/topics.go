// Package topics loads topic packs: named keyword sets that drive
// aggregation runs. A built-in default pack is embedded; users can
// point at their own YAML file to override it.
package topics

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
)

//go:embed topics.yaml
var defaultPackYAML []byte

// Pack is a named collection of topics.
type Pack struct {
	Topics []domain.Topic `yaml:"topics"`
}

// Default returns the embedded topic pack.
func Default() (*Pack, error) {
	return parse(defaultPackYAML)
}

// Load reads a topic pack from a YAML file. An empty path falls back
// to the embedded default pack.
func Load(path string) (*Pack, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic pack: %w", err)
	}
	pack, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("topic pack %s: %w", path, err)
	}
	return pack, nil
}

func parse(data []byte) (*Pack, error) {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse topic pack: %w", err)
	}
	for i, t := range pack.Topics {
		if t.Name == "" {
			return nil, fmt.Errorf("topic %d: %w: missing name", i, domain.ErrInvalidInput)
		}
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("topic %q: %w: no keywords", t.Name, domain.ErrInvalidInput)
		}
	}
	return &pack, nil
}

// Find returns the topic with the given name.
func (p *Pack) Find(name string) (domain.Topic, error) {
	for _, t := range p.Topics {
		if t.Name == name {
			return t, nil
		}
	}
	return domain.Topic{}, fmt.Errorf("topic %q: %w", name, domain.ErrUnknownTopic)
}

// Names lists every topic name in pack order.
func (p *Pack) Names() []string {
	names := make([]string, len(p.Topics))
	for i, t := range p.Topics {
		names[i] = t.Name
	}
	return names
}

// AdHoc builds a one-off topic from raw keywords, for runs that
// bypass the pack.
func AdHoc(keywords []string) (domain.Topic, error) {
	if len(keywords) == 0 {
		return domain.Topic{}, fmt.Errorf("ad-hoc topic: %w: no keywords", domain.ErrInvalidInput)
	}
	return domain.Topic{Name: keywords[0], Keywords: keywords}, nil
}
