package env

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears key for the test and restores it afterwards.
func unset(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestParseValue(t *testing.T) {
	t.Setenv("INTERNALS_TEST_URL", "postgresql://localhost/db")
	unset(t, "INTERNALS_TEST_MISSING")

	got, err := ParseValue(FromEnv("INTERNALS_TEST_URL"))
	require.NoError(t, err)
	assert.Equal(t, "postgresql://localhost/db", got)

	got, err = ParseValue(Literal("file:./dev.db"))
	require.NoError(t, err)
	assert.Equal(t, "file:./dev.db", got)

	_, err = ParseValue(FromEnv("INTERNALS_TEST_MISSING"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnvNotFound))
	assert.Contains(t, err.Error(), `env("INTERNALS_TEST_MISSING") is not set`)

	_, err = ParseValue(Value{})
	assert.Error(t, err)
}

func TestParseBinaryTargets(t *testing.T) {
	native := func(context.Context) (string, error) { return "debian-openssl-3.0.x", nil }
	name := "INTERNALS_TEST_TARGETS"

	t.Setenv(name, `["rhel-openssl-1.0.x", "native"]`)
	got, err := ParseBinaryTargets(context.Background(), []BinaryTargetsValue{
		{Value: "native", Native: true},
		{FromEnvVar: &name},
		{Value: "linux-musl"},
	}, native)
	require.NoError(t, err)
	assert.Equal(t, []string{"debian-openssl-3.0.x", "rhel-openssl-1.0.x", "linux-musl"}, got)

	t.Setenv(name, "darwin, darwin-arm64")
	got, err = ParseBinaryTargets(context.Background(), []BinaryTargetsValue{{FromEnvVar: &name}}, native)
	require.NoError(t, err)
	assert.Equal(t, []string{"darwin", "darwin-arm64"}, got)

	_, err = ParseBinaryTargets(context.Background(), []BinaryTargetsValue{{Native: true, Value: "native"}}, nil)
	assert.Error(t, err)
}

func writeEnv(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTryLoadEnvs(t *testing.T) {
	root := t.TempDir()
	schemaPath := filepath.Join(root, "prisma", "schema.prisma")
	writeEnv(t, filepath.Join(root, ".env"), "INTERNALS_ROOT_ONLY=root\nINTERNALS_SHARED=same\n")
	writeEnv(t, filepath.Join(root, "prisma", ".env"), "INTERNALS_SCHEMA_ONLY=schema\nINTERNALS_SHARED=same\n")
	unset(t, "INTERNALS_ROOT_ONLY")
	unset(t, "INTERNALS_SCHEMA_ONLY")
	unset(t, "INTERNALS_SHARED")

	paths := GetEnvPaths(schemaPath, root)
	require.Equal(t, filepath.Join(root, ".env"), paths.RootEnvPath)
	require.Equal(t, filepath.Join(root, "prisma", ".env"), paths.SchemaEnvPath)

	loaded, err := TryLoadEnvs(paths, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, loaded.Paths, 2)
	assert.Equal(t, "root", os.Getenv("INTERNALS_ROOT_ONLY"))
	assert.Equal(t, "schema", os.Getenv("INTERNALS_SCHEMA_ONLY"))
	assert.Equal(t, "same", loaded.Parsed["INTERNALS_SHARED"])
}

func TestTryLoadEnvsDoesNotOverride(t *testing.T) {
	root := t.TempDir()
	writeEnv(t, filepath.Join(root, ".env"), "INTERNALS_PRESET=from-file\n")
	t.Setenv("INTERNALS_PRESET", "from-process")

	_, err := TryLoadEnvs(GetEnvPaths("", root), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from-process", os.Getenv("INTERNALS_PRESET"))
}

func TestTryLoadEnvsConflict(t *testing.T) {
	root := t.TempDir()
	schemaPath := filepath.Join(root, "prisma", "schema.prisma")
	writeEnv(t, filepath.Join(root, ".env"), "INTERNALS_CONFLICT=a\n")
	writeEnv(t, filepath.Join(root, "prisma", ".env"), "INTERNALS_CONFLICT=b\n")
	unset(t, "INTERNALS_CONFLICT")

	_, err := TryLoadEnvs(GetEnvPaths(schemaPath, root), LoadOptions{Conflict: ConflictError})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnvConflict))
	assert.Contains(t, err.Error(), "INTERNALS_CONFLICT")
	_, set := os.LookupEnv("INTERNALS_CONFLICT")
	assert.False(t, set)

	loaded, err := TryLoadEnvs(GetEnvPaths(schemaPath, root), LoadOptions{Conflict: ConflictWarn})
	require.NoError(t, err)
	assert.Equal(t, "b", os.Getenv("INTERNALS_CONFLICT"))
	assert.Equal(t, "b", loaded.Parsed["INTERNALS_CONFLICT"])
}
