package db

import (
	"errors"
	"fmt"
	"strconv"
)

// DistanceMetric is the vector distance FT.SEARCH scores with.
type DistanceMetric string

// Distance metrics accepted by FT.CREATE.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm is the vector index algorithm.
type VectorAlgorithm string

// Vector algorithms accepted by FT.CREATE.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// FieldKind is the FT schema type of a field, rendered verbatim.
type FieldKind string

// Field kinds used by the passage index.
const (
	FieldTag    FieldKind = "TAG"
	FieldVector FieldKind = "VECTOR"
)

// VectorSpec configures a VECTOR field. Vectors are always FLOAT32.
type VectorSpec struct {
	Algorithm   VectorAlgorithm
	Dim         int
	Distance    DistanceMetric
	M           int // HNSW only; 0 keeps the server default
	EFConstruct int // HNSW only; 0 keeps the server default
}

// IndexField is one schema entry.
type IndexField struct {
	Name          string
	Kind          FieldKind
	CaseSensitive bool        // TAG only
	Vector        *VectorSpec // VECTOR only
}

// IndexDefinition is a HASH-backed FT index.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the definition can be sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Kind {
		case FieldTag:
		case FieldVector:
			if f.Vector == nil || f.Vector.Dim <= 0 {
				return fmt.Errorf("field %q: vector needs a positive dim", f.Name)
			}
		default:
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// Args renders the FT.CREATE arguments that follow the command name.
func (idx *IndexDefinition) Args() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		args = append(args, idx.Fields[i].args()...)
	}
	return args, nil
}

func (f *IndexField) args() []string {
	out := []string{f.Name, string(f.Kind)}
	if f.Kind == FieldTag {
		if f.CaseSensitive {
			out = append(out, "CASESENSITIVE")
		}
		return out
	}

	v := f.Vector
	algo := v.Algorithm
	if algo == "" {
		algo = VectorFlat
	}
	distance := v.Distance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	if algo == VectorHNSW {
		if v.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(v.M))
		}
		if v.EFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruct))
		}
	}
	out = append(out, string(algo), strconv.Itoa(len(attrs)))
	return append(out, attrs...)
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
