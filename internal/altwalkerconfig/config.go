// Package altwalkerconfig loads the optional .altwalker.yml project file
// that supplies CLI defaults, merged under explicit flags (flags win).
package altwalkerconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the subset of CLI defaults an .altwalker.yml file may
// override. Zero values mean "not set"; the CLI only applies a field
// when the corresponding flag was left at its own zero value.
type Config struct {
	Executor      string `yaml:"executor"`
	URL           string `yaml:"url"`
	ReportFile    string `yaml:"reportFile"`
	ReportXMLFile string `yaml:"reportXmlFile"`
	ReportPath    bool   `yaml:"reportPath"`
	GWHost        string `yaml:"gwHost"`
	GWPort        int    `yaml:"gwPort"`
	Verbose       bool   `yaml:"verbose"`
	Unvisited     bool   `yaml:"unvisited"`
}

// Load reads path, returning a zero-value Config (not an error) when the
// file does not exist, since the project file is optional.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("altwalkerconfig: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("altwalkerconfig: parse %q: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays non-zero fields of override onto base, returning the
// result. Used to apply CLI flags (override) on top of the project file
// (base) — flags always win when set.
func Merge(base, override Config) Config {
	result := base
	if override.Executor != "" {
		result.Executor = override.Executor
	}
	if override.URL != "" {
		result.URL = override.URL
	}
	if override.ReportFile != "" {
		result.ReportFile = override.ReportFile
	}
	if override.ReportXMLFile != "" {
		result.ReportXMLFile = override.ReportXMLFile
	}
	if override.ReportPath {
		result.ReportPath = override.ReportPath
	}
	if override.GWHost != "" {
		result.GWHost = override.GWHost
	}
	if override.GWPort != 0 {
		result.GWPort = override.GWPort
	}
	if override.Verbose {
		result.Verbose = override.Verbose
	}
	if override.Unvisited {
		result.Unvisited = override.Unvisited
	}
	return result
}
