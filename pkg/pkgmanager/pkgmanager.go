package pkgmanager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/TechXTT/internals/pkg/fsutil"
)

// Manager is a JavaScript package manager.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
	PNPM Manager = "pnpm"
	Bun  Manager = "bun"
)

var lockfiles = []struct {
	name    string
	manager Manager
}{
	{"bun.lockb", Bun},
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"package-lock.json", NPM},
}

// Get detects the package manager used for the project containing cwd.
func Get(cwd string) Manager {
	if m, ok := FromUserAgent(os.Getenv("npm_config_user_agent")); ok {
		return m
	}
	if pkgJSON, ok := fsutil.FindUp("package.json", cwd); ok {
		if m, ok := fromPackageJSON(pkgJSON); ok {
			return m
		}
	}
	if m, ok := fromLockfiles(cwd); ok {
		return m
	}
	return NPM
}

// FromUserAgent parses npm_config_user_agent, e.g. "pnpm/8.6.0 npm/? node/v18.16.0 linux x64".
func FromUserAgent(ua string) (Manager, bool) {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return "", false
	}
	name := strings.SplitN(fields[0], "/", 2)[0]
	return parse(name)
}

func parse(name string) (Manager, bool) {
	switch Manager(name) {
	case NPM, Yarn, PNPM, Bun:
		return Manager(name), true
	}
	return "", false
}

func fromPackageJSON(path string) (Manager, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var pkg struct {
		PackageManager string `json:"packageManager"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.PackageManager == "" {
		return "", false
	}
	// "pnpm@8.6.0+sha256..."
	return parse(strings.SplitN(pkg.PackageManager, "@", 2)[0])
}

func fromLockfiles(cwd string) (Manager, bool) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", false
	}
	for {
		for _, l := range lockfiles {
			if fsutil.IsFile(filepath.Join(dir, l.name)) {
				return l.manager, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// InstallCommand returns the shell command that adds pkg to the project.
func InstallCommand(m Manager, pkg string, dev bool) string {
	switch m {
	case Yarn:
		if dev {
			return "yarn add -D " + pkg
		}
		return "yarn add " + pkg
	case PNPM:
		if dev {
			return "pnpm add -D " + pkg
		}
		return "pnpm add " + pkg
	case Bun:
		if dev {
			return "bun add -d " + pkg
		}
		return "bun add " + pkg
	default:
		if dev {
			return "npm install --save-dev " + pkg
		}
		return "npm install " + pkg
	}
}
