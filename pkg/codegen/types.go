package codegen

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/dmmf"
)

var scalarTypes = map[string]string{
	"String":   "string",
	"Int":      "int",
	"BigInt":   "int64",
	"Float":    "float64",
	"Decimal":  "string",
	"Boolean":  "bool",
	"DateTime": "time.Time",
	"Json":     "json.RawMessage",
	"Bytes":    "[]byte",
}

// nilable types already have a zero value that reads as "absent".
func nilable(goType string) bool {
	return strings.HasPrefix(goType, "[]") || goType == "json.RawMessage"
}

// GoType returns the Go type a model field is rendered with.
func GoType(f dmmf.Field) string {
	var base string
	switch f.Kind {
	case dmmf.KindObject:
		if f.IsList {
			return "[]" + GoName(f.Type)
		}
		return "*" + GoName(f.Type)
	case dmmf.KindEnum:
		base = GoName(f.Type)
	case dmmf.KindScalar:
		t, ok := scalarTypes[f.Type]
		if !ok {
			t = "string"
		}
		base = t
	default:
		base = "string"
	}
	if f.IsList {
		return "[]" + base
	}
	if !f.IsRequired && !nilable(base) {
		return "*" + base
	}
	return base
}

func importsFor(fields []dmmf.Field) []string {
	var hasTime, hasJSON bool
	for _, f := range fields {
		t := GoType(f)
		hasTime = hasTime || strings.Contains(t, "time.Time")
		hasJSON = hasJSON || strings.Contains(t, "json.RawMessage")
	}
	var out []string
	if hasJSON {
		out = append(out, "encoding/json")
	}
	if hasTime {
		out = append(out, "time")
	}
	return out
}

var initialisms = map[string]bool{
	"ID": true, "URL": true, "URI": true, "JSON": true, "UUID": true,
	"API": true, "HTTP": true, "SQL": true, "IP": true, "DB": true,
}

// GoName turns a schema identifier into an exported Go identifier.
// authorId becomes AuthorID, HTTPServer stays HTTPServer and ADMIN becomes Admin.
func GoName(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		up := strings.ToUpper(w)
		if initialisms[up] {
			b.WriteString(up)
			continue
		}
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// HTTPServer splits before the last capital of the run.
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func columnName(f dmmf.Field) string {
	if f.DBName != nil && *f.DBName != "" {
		return *f.DBName
	}
	return f.Name
}

func structTags(f dmmf.Field) string {
	db := columnName(f)
	if f.IsRelation() {
		db = "-"
	}
	js := f.Name
	if f.IsRelation() || !f.IsRequired {
		js += ",omitempty"
	}
	return "`db:\"" + db + "\" json:\"" + js + "\"`"
}

// checkIdentifiers rejects datamodels whose names collapse to the same Go
// identifier, e.g. enum values ADMIN and admin.
func checkIdentifiers(doc *dmmf.Document) error {
	pkgScope := map[string]string{}
	declare := func(scope map[string]string, ident, origin string) error {
		if prev, ok := scope[ident]; ok {
			return errors.Wrapf(ErrNameCollision, "%s and %s both become %s", prev, origin, ident)
		}
		scope[ident] = origin
		return nil
	}
	for _, m := range doc.Datamodel.Models {
		if err := declare(pkgScope, GoName(m.Name), "model "+m.Name); err != nil {
			return err
		}
		fields := map[string]string{"TableName": "method TableName"}
		for _, f := range m.Fields {
			if err := declare(fields, GoName(f.Name), "field "+m.Name+"."+f.Name); err != nil {
				return err
			}
		}
	}
	for _, e := range doc.Datamodel.Enums {
		name := GoName(e.Name)
		if err := declare(pkgScope, name, "enum "+e.Name); err != nil {
			return err
		}
		for _, v := range e.Values {
			if err := declare(pkgScope, name+GoName(v.Name), "value "+e.Name+"."+v.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
