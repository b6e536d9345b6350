package generator

import (
	"context"

	"github.com/TechXTT/internals/pkg/config"
	"github.com/TechXTT/internals/pkg/dmmf"
)

// Manifest is what a generator reports about itself.
type Manifest struct {
	PrettyName            string     `json:"prettyName,omitempty"`
	DefaultOutput         string     `json:"defaultOutput,omitempty"`
	Denylists             *Denylists `json:"denylists,omitempty"`
	RequiresGenerators    []string   `json:"requiresGenerators,omitempty"`
	RequiresEngines       []string   `json:"requiresEngines,omitempty"`
	Version               string     `json:"version,omitempty"`
	RequiresEngineVersion string     `json:"requiresEngineVersion,omitempty"`
}

// Denylists names models and fields a generator cannot handle.
type Denylists struct {
	Models []string `json:"models,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// Options is the payload of the generate call.
type Options struct {
	Generator       config.GeneratorConfig   `json:"generator"`
	OtherGenerators []config.GeneratorConfig `json:"otherGenerators"`
	SchemaPath      string                   `json:"schemaPath"`
	DMMF            *dmmf.Document           `json:"dmmf"`
	Datasources     []config.DataSource      `json:"datasources"`
	Datamodel       string                   `json:"datamodel"`
	Version         string                   `json:"version"`
	// BinaryPaths maps engine name to binary target to path.
	BinaryPaths map[string]map[string]string `json:"binaryPaths,omitempty"`
}

// Handler serves a generator, either as a child process or in-process.
type Handler interface {
	GetManifest(ctx context.Context, cfg config.GeneratorConfig) (*Manifest, error)
	Generate(ctx context.Context, opts Options) error
	Stop() error
}
