package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".oppfill"

// Control columns of the backing table. Every other column is an extraction
// field candidate.
const (
	colNotes    = "Notes"
	colVerifier = "Verifier"
	colError    = "Error"

	verifierValue = "LLM"
)

// FieldsConfig lists the field names per semantic kind. Names absent from
// every list are treated as plain text fields.
type FieldsConfig struct {
	Category    []string `yaml:"category"`
	Date        []string `yaml:"date"`
	Quantity    []string `yaml:"quantity"`
	Translation []string `yaml:"translation"`
}

// LLMSettings configures the model client.
type LLMSettings struct {
	Provider    string  `yaml:"provider"`
	Host        string  `yaml:"host"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	TablePath           string       `yaml:"table_path"`
	SheetName           string       `yaml:"sheet_name"`
	URLColumn           string       `yaml:"url_column"`
	BatchSize           int          `yaml:"batch_size"`
	BatchPauseSeconds   int          `yaml:"batch_pause_seconds"`
	FetchTimeoutSeconds int          `yaml:"fetch_timeout_seconds"`
	LLM                 LLMSettings  `yaml:"llm"`
	Fields              FieldsConfig `yaml:"fields"`
}

// defaultSettings returns the settings written on first run. The field lists
// mirror the opportunity-tracking sheet this tool was built around.
func defaultSettings() *Settings {
	return &Settings{
		TablePath:           "opportunities.xlsx",
		SheetName:           "Unfilled",
		URLColumn:           "Source",
		BatchSize:           10,
		BatchPauseSeconds:   5,
		FetchTimeoutSeconds: 30,
		LLM: LLMSettings{
			Provider:    "ollama",
			Host:        "http://localhost:11434",
			Model:       "qwen2.5vl:7b",
			MaxTokens:   2048,
			Temperature: 0.1,
		},
		Fields: FieldsConfig{
			Category: []string{
				"Master Student", "Doctoral Student", "PostDoc", "Research Assistant",
				"Competition", "Summer School", "Conference", "Workshop",
				"Physical_Geo", "Human_Geo", "Urban", "GIS", "RS", "GNSS",
			},
			Date:        []string{"Deadline"},
			Quantity:    []string{"Number_Places"},
			Translation: []string{"University_CN", "Country_CN"},
		},
	}
}

// loadSettings loads settings from the YAML file, falling back to defaults
// when the file does not exist.
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", settingsPath, err)
	}

	settings := defaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	return settings, nil
}

// getConfigPath returns the path to a config file in the .oppfill directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates the config directory and writes default settings
// on first run so users have a file to customize.
func ensureConfigExists() error {
	if _, err := os.Stat(defaultConfigDir); os.IsNotExist(err) {
		if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	settingsPath := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		data, err := yaml.Marshal(defaultSettings())
		if err != nil {
			return fmt.Errorf("marshaling default settings: %w", err)
		}
		if err := os.WriteFile(settingsPath, data, 0644); err != nil {
			return fmt.Errorf("writing default settings: %w", err)
		}
	}

	return nil
}
