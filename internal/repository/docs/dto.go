package docs

import (
	"encoding/binary"
	"math"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// Hash field names of a stored passage.
const (
	fieldContent = "content"
	fieldURL     = "url"
	fieldTitle   = "title"
	fieldLibrary = "library"
	fieldVersion = "version"
	fieldVector  = "vector"
)

// unversionedToken stands in for the empty version in keys and TAG values,
// which cannot hold an empty string.
const unversionedToken = "__unversioned__"

// Values of the versions hash.
const (
	versionIndexed    = "1"
	versionNotIndexed = "0"
)

var returnFields = []string{fieldContent, fieldURL, fieldTitle, fieldLibrary, fieldVersion}

func encodeVersion(version string) string {
	if version == domain.Unversioned {
		return unversionedToken
	}
	return version
}

func decodeVersion(stored string) string {
	if stored == unversionedToken {
		return domain.Unversioned
	}
	return stored
}

// buildHashFields flattens a passage and its embedding for HSET.
func buildHashFields(library, version string, p domain.Passage, vec []float64) map[string]string {
	return map[string]string{
		fieldContent: p.Content,
		fieldURL:     p.URL,
		fieldTitle:   p.Title,
		fieldLibrary: library,
		fieldVersion: encodeVersion(version),
		fieldVector:  vectorToBytes(vec),
	}
}

// vectorToBytes serializes a vector as FLOAT32 little-endian, the index vector type.
func vectorToBytes(v []float64) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(f)))
	}
	return string(buf)
}

func vectorToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
