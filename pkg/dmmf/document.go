package dmmf

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrInvalidDocument is returned when engine output is not a DMMF document.
var ErrInvalidDocument = errors.New("invalid DMMF document")

// Decode parses the engine's JSON output.
func Decode(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Wrapf(ErrInvalidDocument, "output does not start with a JSON object: %q", preview(trimmed))
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidDocument, "%v: %q", err, preview(trimmed))
	}
	return &doc, nil
}

func preview(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// Model returns the model called name.
func (d *Document) Model(name string) (*Model, bool) {
	for i := range d.Datamodel.Models {
		if d.Datamodel.Models[i].Name == name {
			return &d.Datamodel.Models[i], true
		}
	}
	return nil, false
}

// Enum returns the datamodel enum called name.
func (d *Document) Enum(name string) (*DatamodelEnum, bool) {
	for i := range d.Datamodel.Enums {
		if d.Datamodel.Enums[i].Name == name {
			return &d.Datamodel.Enums[i], true
		}
	}
	return nil, false
}

// Mapping returns the operation names of a model.
func (d *Document) Mapping(model string) (*ModelMapping, bool) {
	for i := range d.Mappings.ModelOperations {
		if d.Mappings.ModelOperations[i].Model == model {
			return &d.Mappings.ModelOperations[i], true
		}
	}
	return nil, false
}

func (m *Model) Field(name string) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// IDFields returns the fields that identify a record: the @id field, else the
// @@id fields, else nil.
func (m *Model) IDFields() []string {
	for _, f := range m.Fields {
		if f.IsID {
			return []string{f.Name}
		}
	}
	if m.PrimaryKey != nil {
		return m.PrimaryKey.Fields
	}
	return nil
}

func (m *Model) ScalarFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Kind == KindScalar || f.Kind == KindEnum {
			out = append(out, f)
		}
	}
	return out
}

func (m *Model) RelationFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.IsRelation() {
			out = append(out, f)
		}
	}
	return out
}

// TableName is the database name of the model.
func (m *Model) TableName() string {
	if m.DBName != nil && *m.DBName != "" {
		return *m.DBName
	}
	return m.Name
}

func (f *Field) IsRelation() bool {
	return f.Kind == KindObject
}

// DefaultFunc returns the default when it is a function call such as now().
func (f *Field) DefaultFunc() (*FieldDefault, bool) {
	obj, ok := f.Default.(map[string]interface{})
	if !ok {
		return nil, false
	}
	name, _ := obj["name"].(string)
	if name == "" {
		return nil, false
	}
	args, _ := obj["args"].([]interface{})
	return &FieldDefault{Name: name, Args: args}, true
}
