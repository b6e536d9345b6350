// Package codegen renders Go structs from a DMMF datamodel.
package codegen

import (
	"bytes"
	"go/format"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/dmmf"
	"github.com/TechXTT/internals/pkg/fsutil"
)

// DefaultPackage is used when the output directory does not name a valid package.
const DefaultPackage = "models"

// ErrNameCollision is returned when two schema names map to one Go identifier.
var ErrNameCollision = errors.New("names collide in generated code")

// Generator writes one file per model plus enums.go.
type Generator struct {
	Template *template.Template
	// Package overrides the package name derived from the output directory.
	Package string
}

type modelTemplateData struct {
	Package string
	Imports []string
	dmmf.Model
}

type enumTemplateData struct {
	Package string
	Enums   []dmmf.DatamodelEnum
}

func NewGenerator() *Generator {
	funcMap := template.FuncMap{
		"goName":  GoName,
		"goType":  GoType,
		"tags":    structTags,
		"comment": comment,
	}
	tmpl := template.Must(template.New("model").Funcs(funcMap).Parse(modelTemplate))
	template.Must(tmpl.New("enums").Parse(enumTemplate))
	return &Generator{Template: tmpl}
}

func comment(doc string) string {
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	for i, l := range lines {
		lines[i] = "// " + strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

// PackageName derives a package name from a directory.
func PackageName(dir string) string {
	base := strings.ToLower(filepath.Base(dir))
	var b strings.Builder
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit([]rune(name)[0]) {
		return DefaultPackage
	}
	return name
}

// Files renders the datamodel without touching the disk. Keys are file names.
func (g *Generator) Files(doc *dmmf.Document, pkg string) (map[string][]byte, error) {
	if err := checkIdentifiers(doc); err != nil {
		return nil, err
	}
	files := map[string][]byte{}
	for _, m := range doc.Datamodel.Models {
		data := &modelTemplateData{Package: pkg, Imports: importsFor(m.Fields), Model: m}
		src, err := g.render("model", data)
		if err != nil {
			return nil, errors.Wrapf(err, "model %s", m.Name)
		}
		files[strings.ToLower(m.Name)+".go"] = src
	}
	if len(doc.Datamodel.Enums) > 0 {
		src, err := g.render("enums", enumTemplateData{Package: pkg, Enums: doc.Datamodel.Enums})
		if err != nil {
			return nil, errors.Wrap(err, "enums")
		}
		files["enums.go"] = src
	}
	return files, nil
}

func (g *Generator) render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Template.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "generated code does not parse:\n%s", buf.String())
	}
	return src, nil
}

// Generate writes the rendered files to outDir.
func (g *Generator) Generate(doc *dmmf.Document, outDir string) error {
	pkg := g.Package
	if pkg == "" {
		pkg = PackageName(outDir)
	}
	files, err := g.Files(doc, pkg)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(outDir); err != nil {
		return err
	}
	for name, src := range files {
		if err := fsutil.WriteFileAtomic(filepath.Join(outDir, name), src, fsutil.FileMode0644); err != nil {
			return err
		}
	}
	return nil
}

const modelTemplate = `// Code generated by prisma-go-models. DO NOT EDIT.

package {{ .Package }}
{{ if .Imports }}
import (
{{- range .Imports }}
	"{{ . }}"
{{- end }}
)
{{ end }}
{{ if .Documentation }}{{ comment .Documentation }}{{ else }}// {{ goName .Name }} maps to the {{ .TableName }} table.{{ end }}
type {{ goName .Name }} struct {
{{- range .Fields }}
{{- if .Documentation }}
	{{ comment .Documentation }}
{{- end }}
	{{ goName .Name }} {{ goType . }} {{ tags . }}
{{- end }}
}

// TableName returns the table {{ goName .Name }} is stored in.
func ({{ goName .Name }}) TableName() string { return {{ printf "%q" .TableName }} }
`

const enumTemplate = `// Code generated by prisma-go-models. DO NOT EDIT.

package {{ .Package }}
{{ range .Enums }}
{{ if .Documentation }}{{ comment .Documentation }}{{ else }}// {{ goName .Name }} is the {{ .Name }} enum.{{ end }}
type {{ goName .Name }} string

const (
{{- $enum := goName .Name }}
{{- range .Values }}
	{{ $enum }}{{ goName .Name }} {{ $enum }} = {{ printf "%q" .Name }}
{{- end }}
)
{{ end }}`
