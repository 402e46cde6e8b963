package bitwire

import "fmt"

// SiblingProxy is an append-only, insertion-ordered, name-indexed view over
// the fields of a record decoded so far. Dynamic field callbacks receive a
// SiblingProxy instead of a partially-built struct so they can look up an
// already-decoded sibling by name without seeing fields that haven't been
// decoded yet. This mirrors benlink's AttrProxy (bits.py), a dict-backed
// Mapping exposing `__getattr__` access to the fields decoded so far.
type SiblingProxy struct {
	names  []string
	values map[string]any
}

// newSiblingProxy returns an empty proxy.
func newSiblingProxy() *SiblingProxy {
	return &SiblingProxy{values: make(map[string]any)}
}

// set records name's decoded value. Appending a name that's already present
// is a programmer error (schema bug: duplicate field name in one record)
// and panics rather than silently overwriting, since nothing in valid
// schema construction can produce it.
func (p *SiblingProxy) set(name string, value any) {
	if _, ok := p.values[name]; ok {
		panic(fmt.Sprintf("bitwire: sibling %q already set on this proxy", name))
	}
	p.names = append(p.names, name)
	p.values[name] = value
}

// Get returns the decoded value of sibling name. Reading a sibling that
// hasn't been decoded yet (or doesn't exist) is a programmer error — the
// schema author wrote a discriminator that reaches forward or misspells a
// field name — and panics rather than returning a zero value or error,
// treating an undecoded sibling lookup as a compile-time-unreachable
// contract between the discriminator and the record layout.
func (p *SiblingProxy) Get(name string) any {
	v, ok := p.values[name]
	if !ok {
		panic(fmt.Sprintf("bitwire: sibling %q not yet decoded (or does not exist)", name))
	}
	return v
}

// Has reports whether sibling name has been decoded so far. Unlike Get,
// this never panics — it lets a discriminator probe optional context
// without first knowing whether an earlier field exists.
func (p *SiblingProxy) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Names returns every sibling decoded so far, in the order they were
// decoded.
func (p *SiblingProxy) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}
