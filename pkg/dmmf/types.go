// Package dmmf holds the Data Model Meta Format document the query engine
// emits for a schema.
package dmmf

// FieldKind classifies a model field.
type FieldKind string

const (
	KindScalar      FieldKind = "scalar"
	KindObject      FieldKind = "object"
	KindEnum        FieldKind = "enum"
	KindUnsupported FieldKind = "unsupported"
)

// Document is the root of the DMMF.
type Document struct {
	Datamodel Datamodel `json:"datamodel"`
	Schema    Schema    `json:"schema"`
	Mappings  Mappings  `json:"mappings"`
}

type Datamodel struct {
	Models  []Model         `json:"models"`
	Enums   []DatamodelEnum `json:"enums"`
	Types   []Model         `json:"types"`
	Indexes []Index         `json:"indexes,omitempty"`
}

type Model struct {
	Name          string        `json:"name"`
	DBName        *string       `json:"dbName"`
	Fields        []Field       `json:"fields"`
	PrimaryKey    *PrimaryKey   `json:"primaryKey"`
	UniqueFields  [][]string    `json:"uniqueFields"`
	UniqueIndexes []UniqueIndex `json:"uniqueIndexes"`
	Documentation string        `json:"documentation,omitempty"`
	IsGenerated   bool          `json:"isGenerated,omitempty"`
}

type PrimaryKey struct {
	Name   *string  `json:"name"`
	Fields []string `json:"fields"`
}

type UniqueIndex struct {
	Name   *string  `json:"name"`
	Fields []string `json:"fields"`
}

// Index is a @@index, @@unique or @@id declaration.
type Index struct {
	Model            string       `json:"model"`
	Type             string       `json:"type"`
	IsDefinedOnField bool         `json:"isDefinedOnField"`
	Name             *string      `json:"name,omitempty"`
	DBName           *string      `json:"dbName,omitempty"`
	Fields           []IndexField `json:"fields"`
}

type IndexField struct {
	Name      string  `json:"name"`
	SortOrder *string `json:"sortOrder,omitempty"`
	Length    *int    `json:"length,omitempty"`
}

type Field struct {
	Kind               FieldKind   `json:"kind"`
	Name               string      `json:"name"`
	IsRequired         bool        `json:"isRequired"`
	IsList             bool        `json:"isList"`
	IsUnique           bool        `json:"isUnique"`
	IsID               bool        `json:"isId"`
	IsReadOnly         bool        `json:"isReadOnly"`
	IsGenerated        bool        `json:"isGenerated,omitempty"`
	IsUpdatedAt        bool        `json:"isUpdatedAt,omitempty"`
	Type               string      `json:"type"`
	DBName             *string     `json:"dbName,omitempty"`
	HasDefaultValue    bool        `json:"hasDefaultValue"`
	Default            interface{} `json:"default,omitempty"`
	RelationFromFields []string    `json:"relationFromFields,omitempty"`
	RelationToFields   []string    `json:"relationToFields,omitempty"`
	RelationOnDelete   string      `json:"relationOnDelete,omitempty"`
	RelationName       string      `json:"relationName,omitempty"`
	Documentation      string      `json:"documentation,omitempty"`
}

// FieldDefault is the object form of a default, e.g. {"name":"now","args":[]}.
type FieldDefault struct {
	Name string        `json:"name"`
	Args []interface{} `json:"args"`
}

type DatamodelEnum struct {
	Name          string      `json:"name"`
	Values        []EnumValue `json:"values"`
	DBName        *string     `json:"dbName,omitempty"`
	Documentation string      `json:"documentation,omitempty"`
}

type EnumValue struct {
	Name   string  `json:"name"`
	DBName *string `json:"dbName"`
}

// Schema is the query schema the engine derives from the datamodel.
type Schema struct {
	RootQueryType     string                    `json:"rootQueryType,omitempty"`
	RootMutationType  string                    `json:"rootMutationType,omitempty"`
	InputObjectTypes  map[string][]InputType    `json:"inputObjectTypes"`
	OutputObjectTypes map[string][]OutputType   `json:"outputObjectTypes"`
	EnumTypes         map[string][]SchemaEnum   `json:"enumTypes"`
	FieldRefTypes     map[string][]FieldRefType `json:"fieldRefTypes,omitempty"`
}

type InputType struct {
	Name        string           `json:"name"`
	Constraints InputConstraints `json:"constraints"`
	Meta        *InputTypeMeta   `json:"meta,omitempty"`
	Fields      []SchemaArg      `json:"fields"`
}

type InputConstraints struct {
	MaxNumFields *int     `json:"maxNumFields"`
	MinNumFields *int     `json:"minNumFields"`
	Fields       []string `json:"fields,omitempty"`
}

type InputTypeMeta struct {
	Source string `json:"source,omitempty"`
}

type OutputType struct {
	Name   string        `json:"name"`
	Fields []SchemaField `json:"fields"`
}

type SchemaField struct {
	Name          string        `json:"name"`
	IsNullable    bool          `json:"isNullable,omitempty"`
	OutputType    TypeReference `json:"outputType"`
	Args          []SchemaArg   `json:"args"`
	Deprecation   *Deprecation  `json:"deprecation,omitempty"`
	Documentation string        `json:"documentation,omitempty"`
}

type SchemaArg struct {
	Name        string          `json:"name"`
	Comment     string          `json:"comment,omitempty"`
	IsNullable  bool            `json:"isNullable"`
	IsRequired  bool            `json:"isRequired"`
	InputTypes  []TypeReference `json:"inputTypes"`
	Deprecation *Deprecation    `json:"deprecation,omitempty"`
}

// TypeReference points at a type in one of the schema namespaces.
type TypeReference struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Location  string `json:"location"`
	IsList    bool   `json:"isList"`
}

type Deprecation struct {
	SinceVersion          string `json:"sinceVersion"`
	Reason                string `json:"reason"`
	PlannedRemovalVersion string `json:"plannedRemovalVersion,omitempty"`
}

type SchemaEnum struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type FieldRefType struct {
	Name       string          `json:"name"`
	AllowTypes []TypeReference `json:"allowTypes"`
	Fields     []SchemaArg     `json:"fields"`
}

// Mappings ties models to their root operations.
type Mappings struct {
	ModelOperations []ModelMapping  `json:"modelOperations"`
	OtherOperations OtherOperations `json:"otherOperations"`
}

type OtherOperations struct {
	Read  []string `json:"read"`
	Write []string `json:"write"`
}

// ModelMapping holds the operation names of one model, e.g. "findUniqueUser".
// Absent operations are empty.
type ModelMapping struct {
	Model               string `json:"model"`
	Plural              string `json:"plural,omitempty"`
	FindUnique          string `json:"findUnique,omitempty"`
	FindUniqueOrThrow   string `json:"findUniqueOrThrow,omitempty"`
	FindFirst           string `json:"findFirst,omitempty"`
	FindFirstOrThrow    string `json:"findFirstOrThrow,omitempty"`
	FindMany            string `json:"findMany,omitempty"`
	Create              string `json:"create,omitempty"`
	CreateMany          string `json:"createMany,omitempty"`
	CreateManyAndReturn string `json:"createManyAndReturn,omitempty"`
	Update              string `json:"update,omitempty"`
	UpdateMany          string `json:"updateMany,omitempty"`
	Upsert              string `json:"upsert,omitempty"`
	Delete              string `json:"delete,omitempty"`
	DeleteMany          string `json:"deleteMany,omitempty"`
	Aggregate           string `json:"aggregate,omitempty"`
	GroupBy             string `json:"groupBy,omitempty"`
	Count               string `json:"count,omitempty"`
	FindRaw             string `json:"findRaw,omitempty"`
	AggregateRaw        string `json:"aggregateRaw,omitempty"`
}
