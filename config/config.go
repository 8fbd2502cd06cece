package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

type AppConfig struct {
	Store     *StoreConfig     `yaml:"store"`
	Hierarchy *HierarchyConfig `yaml:"hierarchy"`
	Log       *LogConfig       `yaml:"log"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type HierarchyConfig struct {
	Code        string `yaml:"code"`
	Levels      int    `yaml:"levels"`
	SectionSize int    `yaml:"section_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func New() *AppConfig {
	return &AppConfig{
		Store: &StoreConfig{
			Backend: BackendBadger,
			Path:    "data",
		},
		Hierarchy: &HierarchyConfig{
			Code:        "default",
			Levels:      5,
			SectionSize: 10,
		},
		Log: &LogConfig{
			Level: "info",
		},
	}
}

// Load reads the yaml file over the defaults. Missing file leaves defaults
// untouched.
func Load(path string) (*AppConfig, error) {
	c := New()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %q", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %q", path)
	}
	return c, c.validate()
}

func (c *AppConfig) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendBadger:
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Hierarchy.Code == "" {
		return errors.New("hierarchy code is empty")
	}
	return nil
}
