package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the content of a vault's tagnote.yaml.
// Zero values mean "not set"; command-line flags take precedence.
type FileConfig struct {
	Adapter    string `yaml:"adapter,omitempty"`
	Format     string `yaml:"format,omitempty"`
	Variant    string `yaml:"variant,omitempty"`
	Versioning *bool  `yaml:"versioning,omitempty"`
	LogFile    string `yaml:"log_file,omitempty"`
}

// LoadConfig reads tagnote.yaml from root. A missing file yields an empty config.
func LoadConfig(root string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// WriteConfig stores cfg as root/tagnote.yaml.
func WriteConfig(root string, cfg FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ConfigFile), data, 0644)
}

// Options turns the file settings into functional options.
func (c FileConfig) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Format != "" {
		opts = append(opts, WithFormat(c.Format))
	}
	if c.Variant != "" {
		opts = append(opts, WithVariant(c.Variant))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	return opts
}
