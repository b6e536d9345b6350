package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/internals/pkg/env"
)

const getConfigOutput = `{
  "datasources": [{
    "name": "db",
    "provider": "postgresql",
    "activeProvider": "postgresql",
    "url": {"fromEnvVar": "CONFIG_TEST_DATABASE_URL", "value": null},
    "schemas": []
  }],
  "generators": [{
    "name": "client",
    "provider": {"fromEnvVar": null, "value": "prisma-client-js"},
    "output": {"fromEnvVar": null, "value": "/app/node_modules/@prisma/client"},
    "config": {"engineType": "library"},
    "binaryTargets": [{"fromEnvVar": null, "value": "native", "native": true}],
    "previewFeatures": ["fullTextSearch"]
  }],
  "warnings": []
}`

func write(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMetaFormatDecode(t *testing.T) {
	var m MetaFormat
	require.NoError(t, json.Unmarshal([]byte(getConfigOutput), &m))

	ds, err := m.Datasource()
	require.NoError(t, err)
	assert.Equal(t, "postgresql", ds.EffectiveProvider())

	t.Setenv("CONFIG_TEST_DATABASE_URL", "postgresql://u:p@localhost:5432/app")
	dsn, err := ds.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@localhost:5432/app", dsn)

	direct, err := ds.DirectDSN()
	require.NoError(t, err)
	assert.Equal(t, dsn, direct)

	gen, ok := m.Generator("client")
	require.True(t, ok)
	assert.Equal(t, "prisma-client-js", *gen.Provider.Value)
	assert.True(t, gen.BinaryTargets[0].Native)
	assert.Equal(t, "library", gen.Config["engineType"])
}

func TestDSNMissingEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_MISSING", "")
	ds := DataSource{Name: "db", URL: env.FromEnv("CONFIG_TEST_MISSING")}
	_, err := ds.DSN()
	require.Error(t, err)
	assert.True(t, errors.Is(err, env.ErrEnvNotFound))

	_, err = (&MetaFormat{}).Datasource()
	assert.Equal(t, ErrNoDatasource, err)
}

func TestGetSchemaPathDefaults(t *testing.T) {
	dir := t.TempDir()
	_, err := GetSchemaPath(SchemaPathOptions{Cwd: dir})
	assert.True(t, errors.Is(err, ErrSchemaNotFound))

	nested := filepath.Join(dir, "prisma", "schema.prisma")
	write(t, nested, "datasource db {}")
	got, err := GetSchemaPath(SchemaPathOptions{Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, nested, got)

	root := filepath.Join(dir, "schema.prisma")
	write(t, root, "datasource db {}")
	got, err = GetSchemaPath(SchemaPathOptions{Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestGetSchemaPathFromArgs(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "db", "custom.prisma")
	write(t, custom, "model A { id Int @id }")

	got, err := GetSchemaPath(SchemaPathOptions{Cwd: dir, SchemaPathFromArgs: "db/custom.prisma"})
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	_, err = GetSchemaPath(SchemaPathOptions{Cwd: dir, SchemaPathFromArgs: "db/missing.prisma"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
	assert.Contains(t, err.Error(), "db/missing.prisma")
}

func TestGetSchemaPathFromPackageJSON(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "database", "app.prisma")
	write(t, custom, "model A { id Int @id }")
	write(t, filepath.Join(dir, "schema.prisma"), "ignored")
	write(t, filepath.Join(dir, "package.json"), `{"name":"app","prisma":{"schema":"database/app.prisma"}}`)

	got, err := GetSchemaPath(SchemaPathOptions{Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	write(t, filepath.Join(dir, "package.json"), `{"prisma":{"schema":"nope.prisma"}}`)
	_, err = GetSchemaPath(SchemaPathOptions{Cwd: dir})
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
}

func TestReadSchema(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "schema.prisma")
	write(t, p, "model A { id Int @id }")

	got, err := ReadSchema(p)
	require.NoError(t, err)
	assert.Equal(t, "model A { id Int @id }", got)

	_, err = ReadSchema(filepath.Join(dir, "missing.prisma"))
	assert.Error(t, err)
}
