// Package backends adapts certificate parsing libraries to extensions.Source.
//
// Each backend turns a DER block into an Object. The extractor only ever sees
// the Object's Extensions, so it does not depend on any library's internal
// representation.
package backends

import (
	"fmt"
	"sort"

	"github.com/certcat/certext/extensions"
	"github.com/certcat/certext/files/pem"
	"github.com/certcat/certext/oid"
)

// Object is a certificate or certificate request as seen by a backend.
type Object struct {
	Kind pem.Kind
	// SignatureAlgorithm is whatever name or OID the backend reports; pass it
	// through names.Normalize to compare across backends.
	SignatureAlgorithm string
	Extensions         extensions.Source
}

// Backend parses DER blocks.
type Backend interface {
	Name() string
	Open(block pem.Block) (*Object, error)
}

var registry = map[string]Backend{}

func register(b Backend) {
	registry[b.Name()] = b
}

func init() {
	register(derBackend{})
	register(stdlibBackend{})
	register(zcryptoBackend{})
}

// DefaultName is the backend used when none is configured.
const DefaultName = "der"

// Get returns the backend called name.
func Get(name string) (Backend, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, Names())
	}
	return b, nil
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	ret := make([]string, 0, len(registry))
	for name := range registry {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// rawExtension is an extension re-encoded from a library that only exposes
// parsed identifiers.
type rawExtension struct {
	oid      []byte
	critical bool
	value    []byte
}

type rawExtensions []rawExtension

func (r rawExtensions) Len() int            { return len(r) }
func (r rawExtensions) Critical(i int) bool { return r[i].critical }
func (r rawExtensions) Value(i int) []byte  { return r[i].value }
func (r rawExtensions) OID(i int) []byte    { return r[i].oid }

// appendExtension re-encodes the dotted form of id into content octets.
// Libraries built on an encoding/asn1 style ObjectIdentifier have already
// decoded the identifier, so arcs wider than an int were rejected before this
// point.
func appendExtension(exts rawExtensions, id fmt.Stringer, critical bool, value []byte) (rawExtensions, error) {
	content, err := oid.Encode(id.String())
	if err != nil {
		return nil, fmt.Errorf("re-encoding extension OID %s: %w", id, err)
	}
	return append(exts, rawExtension{oid: content, critical: critical, value: value}), nil
}
