package db

import (
	"errors"
	"strconv"
	"strings"
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance.
	DistanceCosine DistanceMetric = "COSINE"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldText is a text field.
	IndexFieldText
	// IndexFieldVector is an HNSW vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// HNSW options, vector fields only
	Dim            int
	Distance       DistanceMetric
	M              int
	EFConstruction int
}

// IndexDefinition is a HASH-backed FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// NewIndex starts an index definition over hashes under prefix.
func NewIndex(name string, prefixes ...string) *IndexDefinition {
	return &IndexDefinition{Name: name, Prefixes: prefixes}
}

// Tag adds a TAG field.
func (idx *IndexDefinition) Tag(name string) *IndexDefinition {
	idx.Fields = append(idx.Fields, IndexField{Name: name, Type: IndexFieldTag})
	return idx
}

// Numeric adds a NUMERIC field.
func (idx *IndexDefinition) Numeric(name string) *IndexDefinition {
	idx.Fields = append(idx.Fields, IndexField{Name: name, Type: IndexFieldNumeric})
	return idx
}

// Text adds a TEXT field.
func (idx *IndexDefinition) Text(name string) *IndexDefinition {
	idx.Fields = append(idx.Fields, IndexField{Name: name, Type: IndexFieldText})
	return idx
}

// Vector adds an HNSW FLOAT32 vector field. Zero m or ef keeps server defaults.
func (idx *IndexDefinition) Vector(name string, dim int, distance DistanceMetric, m, ef int) *IndexDefinition {
	idx.Fields = append(idx.Fields, IndexField{
		Name:           name,
		Type:           IndexFieldVector,
		Dim:            dim,
		Distance:       distance,
		M:              m,
		EFConstruction: ef,
	})
	return idx
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Type == IndexFieldVector && f.Dim <= 0 {
			return errors.New("vector field requires positive DIM")
		}
	}
	return nil
}

// String returns a debug representation resembling the FT.CREATE command.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX")
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for _, f := range idx.Fields {
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
		case IndexFieldNumeric:
			parts = append(parts, "NUMERIC")
		case IndexFieldText:
			parts = append(parts, "TEXT")
		case IndexFieldVector:
			parts = append(parts, "VECTOR", "HNSW")
		}
	}
	return strings.Join(parts, " ")
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != ':' && r != '-' {
			return false
		}
	}
	return true
}
