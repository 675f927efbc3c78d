package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

// decodeConfigFile fills v from a YAML or JSON file chosen by extension.
// Keys absent from the file keep the values already in v.
func decodeConfigFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("parse yaml %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("parse json %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config file %s: unsupported extension %q (expected .yaml, .yml or .json)", path, ext)
	}
	return nil
}

func loadTrainingConfig(path string) (apiclient.TrainingConfig, error) {
	cfg := apiclient.NewTrainingConfig("", "")
	if err := decodeConfigFile(path, &cfg); err != nil {
		return apiclient.TrainingConfig{}, err
	}
	return cfg, nil
}

func loadExportConfig(path string) (apiclient.ExportConfig, error) {
	cfg := apiclient.NewExportConfig("")
	if err := decodeConfigFile(path, &cfg); err != nil {
		return apiclient.ExportConfig{}, err
	}
	return cfg, nil
}
