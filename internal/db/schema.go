package db

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind is the FT schema type of an indexed hash attribute.
type FieldKind uint8

const (
	// KindTag is an exact-match TAG field.
	KindTag FieldKind = iota + 1
	// KindNumeric is a NUMERIC range field.
	KindNumeric
	// KindText is a BM25-scored TEXT field.
	KindText
	// KindVector is a FLOAT32 cosine VECTOR field indexed with HNSW.
	KindVector
)

func (k FieldKind) String() string {
	switch k {
	case KindTag:
		return "TAG"
	case KindNumeric:
		return "NUMERIC"
	case KindText:
		return "TEXT"
	case KindVector:
		return "VECTOR"
	default:
		return fmt.Sprintf("FieldKind(%d)", uint8(k))
	}
}

// HNSWParams sizes a vector field. Zero M or EFConstruct leaves the server default.
type HNSWParams struct {
	Dim         int
	M           int
	EFConstruct int
}

// SchemaField is one attribute of an index schema. Only the options that
// belong to Kind are rendered.
type SchemaField struct {
	Attr  string
	Alias string
	Kind  FieldKind

	Separator     string // tag
	CaseSensitive bool   // tag
	NoStem        bool   // text
	Sortable      bool   // numeric
	HNSW          HNSWParams
}

// QueryName is how the field is addressed in FT.SEARCH queries.
func (f SchemaField) QueryName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Attr
}

// TagField indexes attr for case-insensitive exact matches.
func TagField(attr string) SchemaField {
	return SchemaField{Attr: attr, Kind: KindTag}
}

// ListField indexes a separator-joined list attribute as TAG.
func ListField(attr, sep string) SchemaField {
	return SchemaField{Attr: attr, Kind: KindTag, Separator: sep}
}

// ExactField indexes attr as a case-sensitive TAG.
func ExactField(attr string) SchemaField {
	return SchemaField{Attr: attr, Kind: KindTag, CaseSensitive: true}
}

// NumericField indexes attr for range filters.
func NumericField(attr string) SchemaField {
	return SchemaField{Attr: attr, Kind: KindNumeric}
}

// SortableNumericField indexes attr for range filters and SORTBY.
func SortableNumericField(attr string) SchemaField {
	return SchemaField{Attr: attr, Kind: KindNumeric, Sortable: true}
}

// KoreanTextField indexes attr for BM25 with stemming off.
func KoreanTextField(attr string) SchemaField {
	return SchemaField{Attr: attr, Kind: KindText, NoStem: true}
}

// VectorField indexes attr as a cosine HNSW vector queried as alias.
func VectorField(attr, alias string, p HNSWParams) SchemaField {
	return SchemaField{Attr: attr, Alias: alias, Kind: KindVector, HNSW: p}
}

// IndexDefinition describes an FT index over hashes sharing one key prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []SchemaField
}

// NewIndexDefinition assembles and validates a definition.
func NewIndexDefinition(name, prefix string, fields ...SchemaField) (*IndexDefinition, error) {
	def := &IndexDefinition{Name: name, Prefix: prefix, Fields: fields}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate rejects empty or malformed names, duplicate query names and
// vector fields without a dimension.
func (d *IndexDefinition) Validate() error {
	switch {
	case d.Name == "":
		return errors.New("index name is required")
	case !validIdentifier(d.Name):
		return fmt.Errorf("index name %q contains invalid characters", d.Name)
	case len(d.Fields) == 0:
		return fmt.Errorf("index %s: no fields", d.Name)
	}

	names := make(map[string]struct{}, len(d.Fields))
	for i, f := range d.Fields {
		if f.Attr == "" {
			return fmt.Errorf("index %s: field %d has no attribute", d.Name, i)
		}
		if f.Kind < KindTag || f.Kind > KindVector {
			return fmt.Errorf("index %s: field %s has unknown kind %s", d.Name, f.Attr, f.Kind)
		}
		qn := f.QueryName()
		if _, dup := names[qn]; dup {
			return fmt.Errorf("index %s: duplicate field %s", d.Name, qn)
		}
		names[qn] = struct{}{}

		if f.Kind == KindVector && f.HNSW.Dim <= 0 {
			return fmt.Errorf("index %s: vector field %s needs a positive dimension", d.Name, f.Attr)
		}
	}
	return nil
}

// Field returns the field addressed by queryName.
func (d *IndexDefinition) Field(queryName string) (SchemaField, bool) {
	for _, f := range d.Fields {
		if f.QueryName() == queryName {
			return f, true
		}
	}
	return SchemaField{}, false
}

// HasKind reports whether any field is of kind k.
func (d *IndexDefinition) HasKind(k FieldKind) bool {
	for _, f := range d.Fields {
		if f.Kind == k {
			return true
		}
	}
	return false
}

// String renders a compact, human-readable summary for logs and tests.
func (d *IndexDefinition) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	if d.Prefix != "" {
		sb.WriteString(" [" + d.Prefix + "*]")
	}
	for _, f := range d.Fields {
		sb.WriteString(" " + f.Attr)
		if f.Alias != "" {
			sb.WriteString("->" + f.Alias)
		}
		sb.WriteString(":" + f.Kind.String())
		if f.Kind == KindVector {
			fmt.Fprintf(&sb, "(%d)", f.HNSW.Dim)
		}
	}
	return sb.String()
}

// validIdentifier reports whether s is non-empty and made of [a-zA-Z0-9_:-].
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '_' || r == ':' || r == '-':
			return false
		}
		return true
	}) < 0
}
