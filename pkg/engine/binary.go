package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/fsutil"
	"github.com/TechXTT/internals/pkg/platform"
)

// Binary names one of the native engine executables.
type Binary string

const (
	QueryEngine Binary = "query-engine"
	Formatter   Binary = "prisma-fmt"
)

// EnginesDirEnv points at a directory holding downloaded engines.
const EnginesDirEnv = "PRISMA_ENGINES_DIR"

var ErrBinaryNotFound = errors.New("engine binary not found")

// EnvVar is the variable that overrides the binary location.
func (b Binary) EnvVar() string {
	switch b {
	case QueryEngine:
		return "PRISMA_QUERY_ENGINE_BINARY"
	case Formatter:
		return "PRISMA_FMT_BINARY"
	}
	return "PRISMA_" + strings.ToUpper(strings.ReplaceAll(string(b), "-", "_")) + "_BINARY"
}

// FileName returns the platform specific file name, e.g.
// "query-engine-debian-openssl-3.0.x" or "prisma-fmt-windows.exe".
func (b Binary) FileName(target string) string {
	name := string(b) + "-" + target
	if target == "windows" {
		name += ".exe"
	}
	return name
}

// Resolver locates engine binaries on disk.
type Resolver struct {
	SearchDirs []string
	Platform   func(ctx context.Context) (string, error)
	LookPath   func(file string) (string, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		SearchDirs: DefaultSearchDirs(),
		Platform:   platform.GetPlatform,
		LookPath:   exec.LookPath,
	}
}

// DefaultSearchDirs lists where engines are looked for, in order.
func DefaultSearchDirs() []string {
	var dirs []string
	if d := os.Getenv(EnginesDirEnv); d != "" {
		dirs = append(dirs, d)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(cwd, "node_modules", "@prisma", "engines"))
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if cache, err := homedir.Expand("~/.cache/prisma/engines"); err == nil {
		dirs = append(dirs, cache)
	}
	return dirs
}

// Resolve returns the path of b: the override env var, then every search
// dir, then $PATH.
func (r *Resolver) Resolve(ctx context.Context, b Binary) (string, error) {
	if p := os.Getenv(b.EnvVar()); p != "" {
		if !fsutil.IsFile(p) {
			return "", errors.Wrapf(ErrBinaryNotFound, "%s=%s does not point at a file", b.EnvVar(), p)
		}
		debug.Printf("using %s from %s", b, b.EnvVar())
		return p, nil
	}

	var tried []string
	if r.Platform != nil && len(r.SearchDirs) > 0 {
		target, err := r.Platform(ctx)
		if err != nil {
			return "", errors.Wrap(err, "failed to detect platform")
		}
		for _, dir := range r.SearchDirs {
			candidate := filepath.Join(dir, b.FileName(target))
			tried = append(tried, candidate)
			if fsutil.IsFile(candidate) {
				debug.Printf("resolved %s to %s", b, candidate)
				return candidate, nil
			}
		}
	}

	if r.LookPath != nil {
		tried = append(tried, "$PATH/"+string(b))
		if p, err := r.LookPath(string(b)); err == nil {
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrBinaryNotFound, "%s (tried %s; set %s to override)", b, strings.Join(tried, ", "), b.EnvVar())
}
