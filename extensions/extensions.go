// Package extensions normalizes the extensions of a certificate or
// certificate signing request into a map keyed by dotted OID.
//
// The certificate itself is never touched here: callers supply a Source,
// usually one of the adapters in package backends, which exposes each
// extension's raw identifier, critical flag and value.
package extensions

import (
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/certcat/certext/oid"
)

// Source is an ordered list of extensions as provided by some backend.
type Source interface {
	// Len returns the number of extensions.
	Len() int
	// Critical reports whether extension i is marked critical.
	Critical(i int) bool
	// Value returns the raw extnValue of extension i, without its OCTET
	// STRING tag and length.
	Value(i int) []byte
	// OID returns the DER content octets of the extnID of extension i,
	// without the OBJECT IDENTIFIER tag and length.
	OID(i int) []byte
}

// Extension is the normalized form of one extension. Value is serialized as
// base64 in both JSON and YAML.
type Extension struct {
	Critical bool   `json:"critical"`
	Value    []byte `json:"value"`
}

// MarshalYAML matches the JSON representation.
func (e Extension) MarshalYAML() (any, error) {
	return struct {
		Critical bool   `yaml:"critical"`
		Value    string `yaml:"value"`
	}{
		Critical: e.Critical,
		Value:    base64.StdEncoding.EncodeToString(e.Value),
	}, nil
}

// Map holds normalized extensions keyed by dotted OID.
type Map map[string]Extension

// OIDs returns the keys of m in numeric arc order.
func (m Map) OIDs() []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	slices.SortFunc(ret, oid.Compare)
	return ret
}

// DuplicateError is returned by ExtractStrict when two extensions share an
// OID. First and Second are their positions in the Source.
type DuplicateError struct {
	OID    string
	First  int
	Second int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate extension %s at positions %d and %d", e.OID, e.First, e.Second)
}

// Extract decodes every extension of src, in order. When several extensions
// share an OID the last one wins. If any OID fails to decode, Extract returns
// a nil Map and an error wrapping the *oid.EncodingError.
func Extract(src Source) (Map, error) {
	return extract(src, false)
}

// ExtractStrict is like Extract but fails with a *DuplicateError instead of
// collapsing repeated OIDs.
func ExtractStrict(src Source) (Map, error) {
	return extract(src, true)
}

func extract(src Source, strict bool) (Map, error) {
	n := src.Len()
	ret := make(Map, n)
	var positions map[string]int
	if strict {
		positions = make(map[string]int, n)
	}

	for i := range n {
		id, err := oid.Decode(src.OID(i))
		if err != nil {
			return nil, fmt.Errorf("decoding OID of extension %d: %w", i, err)
		}

		if strict {
			if first, ok := positions[id]; ok {
				return nil, &DuplicateError{OID: id, First: first, Second: i}
			}
			positions[id] = i
		}

		ret[id] = Extension{
			Critical: src.Critical(i),
			Value:    src.Value(i),
		}
	}

	return ret, nil
}
