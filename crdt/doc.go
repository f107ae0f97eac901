package crdt

import (
	"sort"
	"strings"
)

// Doc is one participant's materialized view of the shared sequence.
// The element slice is always sorted by (Position, Site) and contains
// no duplicate keys; that invariant is what makes every replica
// converge on the same order regardless of delivery order.
//
// A Doc is single-owner: the caller serializes access by handling one
// local edit or one inbound message to completion at a time. No method
// blocks.
type Doc struct {
	site string
	els  []Element
}

// NewDoc creates an empty document owned by the given site.
func NewDoc(site string) *Doc {
	return &Doc{site: site}
}

// Site returns the owning participant's site identifier.
func (d *Doc) Site() string { return d.site }

// Len returns the number of live elements.
func (d *Doc) Len() int { return len(d.els) }

// search locates ref in the sorted sequence. It returns the index of
// the element when found, else the insertion index for it.
func (d *Doc) search(ref Ref) (int, bool) {
	i := sort.Search(len(d.els), func(i int) bool {
		return d.els[i].Ref().Compare(ref) >= 0
	})
	if i < len(d.els) && d.els[i].Ref().Compare(ref) == 0 {
		return i, true
	}
	return i, false
}

// LocalInsert inserts value at the given index, allocating a position
// strictly between the index's neighbors. The index is clamped to
// [0, Len]. The returned element is what the caller broadcasts and what
// the undo manager records.
func (d *Doc) LocalInsert(index int, value string, attrs Attributes) Element {
	if index < 0 {
		index = 0
	}
	if index > len(d.els) {
		index = len(d.els)
	}
	var before, after Position
	if index > 0 {
		before = d.els[index-1].Position
	}
	if index < len(d.els) {
		after = d.els[index].Position
	}
	el := Element{
		Value:      value,
		Position:   Between(before, after),
		Site:       d.site,
		Attributes: attrs.Clone(),
	}
	d.splice(index, el)
	return el.Clone()
}

// RemoteInsert merges an element produced elsewhere. If an element with
// the same key already exists the call is a no-op, so redelivery is
// safe. It returns the index the element landed at and whether the
// sequence changed.
func (d *Doc) RemoteInsert(el Element) (int, bool) {
	i, found := d.search(el.Ref())
	if found {
		return i, false
	}
	d.splice(i, el.Clone())
	return i, true
}

// LocalDelete removes the element at index and returns it for broadcast
// and undo. Out-of-range indices return false with no mutation.
func (d *Doc) LocalDelete(index int) (Element, bool) {
	if index < 0 || index >= len(d.els) {
		return Element{}, false
	}
	el := d.els[index]
	d.els = append(d.els[:index], d.els[index+1:]...)
	return el, true
}

// RemoteDelete removes the element addressed by ref. It returns the
// index it was removed from, or -1 when the element is already gone —
// a designed no-op under concurrent deletion, not an error.
func (d *Doc) RemoteDelete(ref Ref) int {
	i, found := d.search(ref)
	if !found {
		return -1
	}
	d.els = append(d.els[:i], d.els[i+1:]...)
	return i
}

// LocalBatchDelete removes the half-open index range [start, end) in one
// splice and returns the removed elements in document order. An invalid
// range returns nil with no mutation.
func (d *Doc) LocalBatchDelete(start, end int) []Element {
	if start < 0 || end > len(d.els) || start >= end {
		return nil
	}
	removed := make([]Element, end-start)
	copy(removed, d.els[start:end])
	d.els = append(d.els[:start], d.els[end:]...)
	return removed
}

// BatchRemoteDelete applies a multi-element remote delete in one linear
// compaction pass: a key set built from refs, then a single retain scan.
// It returns the number of elements actually removed; refs addressing
// elements already gone contribute nothing.
func (d *Doc) BatchRemoteDelete(refs []Ref) int {
	if len(refs) == 0 {
		return 0
	}
	doomed := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		doomed[r.key()] = struct{}{}
	}
	kept := d.els[:0]
	for _, el := range d.els {
		if _, ok := doomed[el.Ref().key()]; ok {
			continue
		}
		kept = append(kept, el)
	}
	removed := len(d.els) - len(kept)
	d.els = kept
	return removed
}

// FormatRecord captures everything needed to broadcast and invert one
// local format: the patch that was applied and, per patched key, the
// prior value (nil meaning the key was unset).
type FormatRecord struct {
	Ref   Ref
	Patch Attributes
	Prev  Attributes
}

// LocalFormat merges patch into the attributes of the element at index.
// It returns false on an out-of-range index or an empty patch.
func (d *Doc) LocalFormat(index int, patch Attributes) (FormatRecord, bool) {
	if index < 0 || index >= len(d.els) || len(patch) == 0 {
		return FormatRecord{}, false
	}
	el := &d.els[index]
	prev := make(Attributes, len(patch))
	for k := range patch {
		if v, ok := el.Attributes[k]; ok {
			prev[k] = v
		} else {
			prev[k] = nil
		}
	}
	if el.Attributes == nil {
		el.Attributes = make(Attributes, len(patch))
	}
	el.Attributes.Merge(patch)
	if len(el.Attributes) == 0 {
		el.Attributes = nil
	}
	return FormatRecord{Ref: el.Ref(), Patch: patch.Clone(), Prev: prev}, true
}

// RemoteFormat merges patch into the element addressed by ref. A patch
// addressed at a concurrently deleted element is silently dropped; the
// return value distinguishes the designed no-op from an applied merge.
func (d *Doc) RemoteFormat(ref Ref, patch Attributes) bool {
	i, found := d.search(ref)
	if !found {
		return false
	}
	if d.els[i].Attributes == nil {
		d.els[i].Attributes = make(Attributes, len(patch))
	}
	d.els[i].Attributes.Merge(patch)
	if len(d.els[i].Attributes) == 0 {
		d.els[i].Attributes = nil
	}
	return true
}

// LoadState replaces the whole sequence with a defensive copy of els,
// re-sorted into canonical order. Foreign snapshots arriving unsorted
// are tolerated. Used for the startup sync handshake and for document
// import.
func (d *Doc) LoadState(els []Element) {
	next := make([]Element, len(els))
	for i, el := range els {
		next[i] = el.Clone()
	}
	sort.Slice(next, func(i, j int) bool {
		return next[i].Ref().Compare(next[j].Ref()) < 0
	})
	d.els = next
}

// Text returns the flattened document text.
func (d *Doc) Text() string {
	var b strings.Builder
	for _, el := range d.els {
		b.WriteString(el.Value)
	}
	return b.String()
}

// Elements returns a deep copy of the live sequence in document order.
// Mutating the result never touches the Doc.
func (d *Doc) Elements() []Element {
	out := make([]Element, len(d.els))
	for i, el := range d.els {
		out[i] = el.Clone()
	}
	return out
}

// splice inserts el at index i.
func (d *Doc) splice(i int, el Element) {
	d.els = append(d.els, Element{})
	copy(d.els[i+1:], d.els[i:])
	d.els[i] = el
}
