package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/fsutil"
	"github.com/TechXTT/internals/pkg/logger"
)

// ConflictMode controls what TryLoadEnvs does with keys defined differently
// in both .env files.
type ConflictMode int

const (
	ConflictError ConflictMode = iota
	ConflictWarn
)

// ErrEnvConflict is returned when the root and schema .env files disagree.
var ErrEnvConflict = errors.New("conflicting env vars")

// EnvPaths holds the candidate .env files. Empty means absent.
type EnvPaths struct {
	RootEnvPath   string
	SchemaEnvPath string
}

type LoadOptions struct {
	Conflict ConflictMode
}

// LoadedEnv describes what TryLoadEnvs did.
type LoadedEnv struct {
	Paths    []string
	Parsed   map[string]string
	Messages []string
}

// GetEnvPaths returns the .env next to cwd and the one next to the schema,
// dropping files that do not exist.
func GetEnvPaths(schemaPath, cwd string) EnvPaths {
	var paths EnvPaths
	root := filepath.Join(cwd, ".env")
	if fsutil.IsFile(root) {
		paths.RootEnvPath = root
	}
	if schemaPath != "" {
		schemaEnv := filepath.Join(filepath.Dir(schemaPath), ".env")
		if fsutil.IsFile(schemaEnv) && !samePath(schemaEnv, root) {
			paths.SchemaEnvPath = schemaEnv
		}
	}
	return paths
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// TryLoadEnvs loads the schema .env and then the root .env into the process
// environment. Variables already set in the process are never overridden.
func TryLoadEnvs(paths EnvPaths, opts LoadOptions) (*LoadedEnv, error) {
	loaded := &LoadedEnv{Parsed: map[string]string{}}

	var rootVars, schemaVars map[string]string
	var err error
	if paths.RootEnvPath != "" {
		if rootVars, err = godotenv.Read(paths.RootEnvPath); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", paths.RootEnvPath)
		}
	}
	if paths.SchemaEnvPath != "" {
		if schemaVars, err = godotenv.Read(paths.SchemaEnvPath); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", paths.SchemaEnvPath)
		}
	}

	if conflicts := conflictingKeys(rootVars, schemaVars); len(conflicts) > 0 {
		msg := fmt.Sprintf("there is a conflict between env vars in %s and %s: %s",
			paths.RootEnvPath, paths.SchemaEnvPath, strings.Join(conflicts, ", "))
		if opts.Conflict == ConflictError {
			return nil, errors.Wrap(ErrEnvConflict, msg)
		}
		logger.Warn(msg)
	}

	for _, f := range []struct {
		path string
		vars map[string]string
	}{
		{paths.SchemaEnvPath, schemaVars},
		{paths.RootEnvPath, rootVars},
	} {
		if f.path == "" {
			continue
		}
		if err := godotenv.Load(f.path); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", f.path)
		}
		for k, v := range f.vars {
			if _, ok := loaded.Parsed[k]; !ok {
				loaded.Parsed[k] = v
			}
		}
		loaded.Paths = append(loaded.Paths, f.path)
		loaded.Messages = append(loaded.Messages, fmt.Sprintf("Environment variables loaded from %s", relative(f.path)))
	}
	return loaded, nil
}

func conflictingKeys(a, b map[string]string) []string {
	var keys []string
	for k, v := range a {
		if other, ok := b[k]; ok && other != v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func relative(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
