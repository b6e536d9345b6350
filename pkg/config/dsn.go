package config

import (
	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/env"
)

var ErrNoDatasource = errors.New("schema has no datasource block")

// Datasource returns the single datasource of the schema.
func (m *MetaFormat) Datasource() (*DataSource, error) {
	if len(m.Datasources) == 0 {
		return nil, ErrNoDatasource
	}
	return &m.Datasources[0], nil
}

// DSN resolves the datasource url, reading the env var when the schema uses
// env("...").
func (d *DataSource) DSN() (string, error) {
	dsn, err := env.ParseValue(d.URL)
	if err != nil {
		return "", errors.Wrapf(err, "datasource %q url", d.Name)
	}
	return dsn, nil
}

// DirectDSN resolves directUrl, falling back to url.
func (d *DataSource) DirectDSN() (string, error) {
	if d.DirectURL == nil {
		return d.DSN()
	}
	dsn, err := env.ParseValue(*d.DirectURL)
	if err != nil {
		return "", errors.Wrapf(err, "datasource %q directUrl", d.Name)
	}
	return dsn, nil
}

// EffectiveProvider is the provider the engine runs with.
func (d *DataSource) EffectiveProvider() string {
	if d.ActiveProvider != "" {
		return d.ActiveProvider
	}
	return d.Provider
}
