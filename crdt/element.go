package crdt

import (
	"strconv"
	"strings"
)

// Attributes holds the formatting state of one element: boolean flags
// such as "bold", "italic" and "underline", and string properties such
// as "fontSize" and "fontFamily". An absent key means unset/inherit.
type Attributes map[string]any

// Clone returns an independent copy of a. A nil receiver yields nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge applies patch onto a as a shallow key merge. A nil patch value
// unsets the key. Concurrent patches to the same key resolve
// last-write-wins in delivery order; there is no logical timestamp.
func (a Attributes) Merge(patch Attributes) {
	for k, v := range patch {
		if v == nil {
			delete(a, k)
			continue
		}
		a[k] = v
	}
}

// Equal reports whether a and b carry the same keys and values. Nil and
// empty sets compare equal.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || bv != v {
			return false
		}
	}
	return true
}

// Element is one logical character (or line break) in the replicated
// sequence. Its identity is the (Position, Site) pair; Value and
// Attributes are the mutable payload.
type Element struct {
	Value      string     `json:"value"`
	Position   Position   `json:"position"`
	Site       string     `json:"siteId"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	e.Position = e.Position.Clone()
	e.Attributes = e.Attributes.Clone()
	return e
}

// Ref returns the element's identity key.
func (e Element) Ref() Ref {
	return Ref{Position: e.Position, Site: e.Site}
}

// Ref addresses one element by its identity: the position identifier
// plus the site that created it.
type Ref struct {
	Position Position `json:"position"`
	Site     string   `json:"siteId"`
}

// Compare orders refs by position, tie-breaking on site. This is the
// canonical document order shared by every participant.
func (r Ref) Compare(o Ref) int {
	if c := r.Position.Compare(o.Position); c != 0 {
		return c
	}
	return strings.Compare(r.Site, o.Site)
}

// key flattens the ref into a map key for set membership tests.
func (r Ref) key() string {
	var b strings.Builder
	for i, c := range r.Position {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(c))
	}
	b.WriteByte('@')
	b.WriteString(r.Site)
	return b.String()
}
