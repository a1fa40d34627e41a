// Package names canonicalizes attribute, extension and algorithm names.
//
// Different crypto libraries spell the same object differently ("CN",
// "commonName", "2.5.4.3"). A Normalizer maps every known spelling to one
// canonical form, either the short one or the long one. The mapping is pure
// data: two enumerated alias tables, loaded once and never modified.
package names

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Tables is the on-disk form of the alias tables.
type Tables struct {
	// Short maps an alias to its canonical short name.
	Short map[string]string `yaml:"short"`
	// Long maps an alias to its canonical long name.
	Long map[string]string `yaml:"long"`
}

// Normalizer looks names up in a pair of alias tables. It is read-only and
// safe for concurrent use.
type Normalizer struct {
	short map[string]string
	long  map[string]string
}

var defaultNormalizer = mustLoad(defaultTables)

func mustLoad(data []byte) *Normalizer {
	n, err := Load(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("loading built-in name tables: %s", err))
	}
	return n
}

// Default returns the Normalizer built from the embedded tables.
func Default() *Normalizer {
	return defaultNormalizer
}

// Normalize canonicalizes name using the embedded tables.
func Normalize(name string, short bool) string {
	return defaultNormalizer.Normalize(name, short)
}

// Load reads alias tables in YAML form. Unknown keys are rejected, and so is
// any table in which a canonical name is itself an alias for something else.
func Load(r io.Reader) (*Normalizer, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var t Tables
	if err := decoder.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("name tables are empty")
		}
		return nil, fmt.Errorf("parsing name tables: %w", err)
	}

	return New(t)
}

// New builds a Normalizer from already decoded tables. The maps are copied.
func New(t Tables) (*Normalizer, error) {
	if err := checkFixedPoints("short", t.Short); err != nil {
		return nil, err
	}
	if err := checkFixedPoints("long", t.Long); err != nil {
		return nil, err
	}

	return &Normalizer{
		short: clone(t.Short),
		long:  clone(t.Long),
	}, nil
}

// checkFixedPoints makes sure a canonical name never maps onward, which is
// what keeps Normalize idempotent.
func checkFixedPoints(table string, m map[string]string) error {
	aliases := make([]string, 0, len(m))
	for alias := range m {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		canonical := m[alias]
		if canonical == "" {
			return fmt.Errorf("%s table: alias %q has an empty canonical name", table, alias)
		}
		if next, ok := m[canonical]; ok && next != canonical {
			return fmt.Errorf("%s table: %q -> %q -> %q: canonical names must map to themselves",
				table, alias, canonical, next)
		}
	}
	return nil
}

func clone(m map[string]string) map[string]string {
	ret := make(map[string]string, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

// Normalize returns the canonical short (short == true) or long form of name.
// Lookups are exact and case-sensitive; unknown names are returned unchanged.
func (n *Normalizer) Normalize(name string, short bool) string {
	table := n.long
	if short {
		table = n.short
	}
	if canonical, ok := table[name]; ok {
		return canonical
	}
	return name
}

// Aliases returns every name the Normalizer knows, sorted.
func (n *Normalizer) Aliases() []string {
	seen := make(map[string]struct{}, len(n.short)+len(n.long))
	for alias := range n.short {
		seen[alias] = struct{}{}
	}
	for alias := range n.long {
		seen[alias] = struct{}{}
	}

	ret := make([]string, 0, len(seen))
	for alias := range seen {
		ret = append(ret, alias)
	}
	sort.Strings(ret)
	return ret
}
