package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/fsutil"
	"github.com/TechXTT/internals/pkg/logger"
)

// ErrSchemaNotFound is returned when no schema file could be located.
var ErrSchemaNotFound = errors.New("could not find a schema.prisma file")

var debug = logger.Debug("prisma:getSchema")

// DefaultSchemaPaths are tried relative to the working directory.
var DefaultSchemaPaths = []string{
	"schema.prisma",
	filepath.Join("prisma", "schema.prisma"),
}

type SchemaPathOptions struct {
	// SchemaPathFromArgs is an explicit --schema value.
	SchemaPathFromArgs string
	// Cwd defaults to the process working directory.
	Cwd string
}

// GetSchemaPath locates the schema: the explicit argument, the "prisma.schema"
// entry of package.json, then the default locations.
func GetSchemaPath(opts SchemaPathOptions) (string, error) {
	cwd := opts.Cwd
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return "", err
		}
	}

	if opts.SchemaPathFromArgs != "" {
		p := opts.SchemaPathFromArgs
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		if !fsutil.IsFile(p) {
			return "", errors.Wrapf(ErrSchemaNotFound, "provided --schema at %s doesn't exist", opts.SchemaPathFromArgs)
		}
		return p, nil
	}

	if p, ok, err := schemaFromPackageJSON(cwd); err != nil {
		return "", err
	} else if ok {
		return p, nil
	}

	for _, rel := range DefaultSchemaPaths {
		p := filepath.Join(cwd, rel)
		if fsutil.IsFile(p) {
			debug.Printf("found schema at %s", p)
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrSchemaNotFound, "checked %v in %s", DefaultSchemaPaths, cwd)
}

func schemaFromPackageJSON(cwd string) (string, bool, error) {
	pkgPath := filepath.Join(cwd, "package.json")
	data, err := os.ReadFile(pkgPath)
	if err != nil {
		return "", false, nil
	}
	var pkg struct {
		Prisma struct {
			Schema string `json:"schema"`
		} `json:"prisma"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		debug.Printf("ignoring unparsable %s: %v", pkgPath, err)
		return "", false, nil
	}
	if pkg.Prisma.Schema == "" {
		return "", false, nil
	}
	p := pkg.Prisma.Schema
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	if !fsutil.IsFile(p) {
		return "", false, errors.Wrapf(ErrSchemaNotFound, "provided schema path %s from package.json doesn't exist", pkg.Prisma.Schema)
	}
	return p, true, nil
}

// ReadSchema reads the schema file at path.
func ReadSchema(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read schema %s", path)
	}
	return string(data), nil
}
