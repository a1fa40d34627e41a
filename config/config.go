// Package config reads the certext configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/certcat/certext/logging"
)

// Config is the top level of the configuration file.
type Config struct {
	Log logging.Config `yaml:"log"`
	// Names is the path of a name table file replacing the embedded one.
	Names string `yaml:"names"`
	// Backend names the default parsing backend.
	Backend string `yaml:"backend"`
}

// Load reads and strictly decodes the file at path. Settings the file leaves
// out keep their defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := Config{Log: logging.Config{Level: logging.DefaultLevel}}
	if err := Unmarshal(content, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &c, nil
}

// Unmarshal decodes YAML into out, rejecting keys out does not declare.
func Unmarshal(b []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)

	err := decoder.Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
