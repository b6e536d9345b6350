package config

import (
	"github.com/TechXTT/internals/pkg/env"
)

// MetaFormat is the engine's view of the datasource and generator blocks of
// a schema.
type MetaFormat struct {
	Datasources []DataSource      `json:"datasources"`
	Generators  []GeneratorConfig `json:"generators"`
	Warnings    []string          `json:"warnings"`
}

type DataSource struct {
	Name           string     `json:"name"`
	Provider       string     `json:"provider"`
	ActiveProvider string     `json:"activeProvider"`
	URL            env.Value  `json:"url"`
	DirectURL      *env.Value `json:"directUrl,omitempty"`
	Schemas        []string   `json:"schemas"`
}

type GeneratorConfig struct {
	Name            string                   `json:"name"`
	Provider        env.Value                `json:"provider"`
	Output          *env.Value               `json:"output"`
	Config          map[string]string        `json:"config"`
	BinaryTargets   []env.BinaryTargetsValue `json:"binaryTargets"`
	PreviewFeatures []string                 `json:"previewFeatures"`
	// IsCustomOutput is set once the output was taken from the schema
	// rather than a generator default.
	IsCustomOutput bool `json:"isCustomOutput,omitempty"`
}

// Generator returns the generator block called name.
func (m *MetaFormat) Generator(name string) (*GeneratorConfig, bool) {
	for i := range m.Generators {
		if m.Generators[i].Name == name {
			return &m.Generators[i], true
		}
	}
	return nil, false
}
