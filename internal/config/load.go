package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the settings found in a JSON or YAML file on top of cfg.
// Fields missing from the file keep their current value. The format is picked
// by extension: .json, .yaml or .yml.
func (c *MainConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (want .json, .yaml or .yml)", ext)
	}

	log.Printf("Loaded config file %s", path)
	return nil
}
