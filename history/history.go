// Package history records the inverse of every local edit action and
// replays it on undo/redo. Replay goes through the same remote-apply
// methods the network uses, so undoing an element a peer already
// deleted is the same silent no-op as a stale remote delete. Undo is
// best-effort under concurrency, not transactional.
package history

import (
	"github.com/Zabi-Anwari/CollabCore/crdt"
	"github.com/Zabi-Anwari/CollabCore/wire"
)

// DefaultLimit is the undo stack depth used when none is given.
const DefaultLimit = 100

type entryKind int

const (
	kindInsert entryKind = iota
	kindDelete
	kindFormat
)

// entry is one invertible operation. Insert and delete entries capture
// the full element so either direction can reconstruct it; format
// entries capture the patch and the per-key prior values.
type entry struct {
	kind entryKind
	el   crdt.Element
	rec  crdt.FormatRecord
}

// batch is the unit of undo: every entry produced by one user action.
type batch struct {
	entries []entry
}

// Manager owns the undo and redo stacks for one participant. Like the
// Doc it serves, it is single-owner and lock-free; the session's event
// discipline serializes access.
type Manager struct {
	site  string
	limit int
	undo  []batch
	redo  []batch
}

// NewManager creates a manager for the given site. A non-positive limit
// falls back to DefaultLimit.
func NewManager(site string, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{site: site, limit: limit}
}

// CanUndo reports whether an undo batch is available.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether a redo batch is available.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// RecordInsert records one user action that inserted els, in insertion
// order. Empty actions are never pushed.
func (m *Manager) RecordInsert(els []crdt.Element) {
	if len(els) == 0 {
		return
	}
	b := batch{entries: make([]entry, len(els))}
	for i, el := range els {
		b.entries[i] = entry{kind: kindInsert, el: el.Clone()}
	}
	m.push(b)
}

// RecordDelete records one user action that removed els.
func (m *Manager) RecordDelete(els []crdt.Element) {
	if len(els) == 0 {
		return
	}
	b := batch{entries: make([]entry, len(els))}
	for i, el := range els {
		b.entries[i] = entry{kind: kindDelete, el: el.Clone()}
	}
	m.push(b)
}

// RecordFormat records one user action that reformatted a selection.
func (m *Manager) RecordFormat(recs []crdt.FormatRecord) {
	if len(recs) == 0 {
		return
	}
	b := batch{entries: make([]entry, len(recs))}
	for i, r := range recs {
		b.entries[i] = entry{kind: kindFormat, rec: r}
	}
	m.push(b)
}

// push appends a batch to the undo stack, clears redo, and drops the
// oldest batches past the depth limit.
func (m *Manager) push(b batch) {
	m.undo = append(m.undo, b)
	m.redo = nil
	if excess := len(m.undo) - m.limit; excess > 0 {
		m.undo = m.undo[excess:]
	}
}

// Undo pops the latest batch, replays its entries in reverse with each
// one inverted, and returns the operations to broadcast, grouped into
// batch messages. It returns false when the undo stack is empty.
func (m *Manager) Undo(doc *crdt.Doc) ([]wire.Message, bool) {
	if len(m.undo) == 0 {
		return nil, false
	}
	b := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	msgs := m.replay(doc, b, true)
	m.redo = append(m.redo, b)
	return msgs, true
}

// Redo pops the latest undone batch, replays it in its original
// direction, and pushes it back onto the undo stack without disturbing
// the remaining redo entries.
func (m *Manager) Redo(doc *crdt.Doc) ([]wire.Message, bool) {
	if len(m.redo) == 0 {
		return nil, false
	}
	b := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	msgs := m.replay(doc, b, false)
	m.undo = append(m.undo, b)
	return msgs, true
}

// replay applies every entry of b to doc — inverted and in reverse
// order for undo, forward for redo — and collects one outgoing
// operation per entry. Entries addressing elements a peer already
// removed still emit their operation; receivers treat it as the same
// no-op the local apply was.
func (m *Manager) replay(doc *crdt.Doc, b batch, inverted bool) []wire.Message {
	n := len(b.entries)
	inserts := make([]crdt.Element, 0, n)
	deletes := make([]crdt.Ref, 0, n)
	formats := make([]crdt.FormatRecord, 0, n)

	for i := 0; i < n; i++ {
		e := b.entries[i]
		if inverted {
			e = b.entries[n-1-i]
		}
		switch e.kind {
		case kindInsert:
			if inverted {
				doc.RemoteDelete(e.el.Ref())
				deletes = append(deletes, e.el.Ref())
			} else {
				doc.RemoteInsert(e.el)
				inserts = append(inserts, e.el.Clone())
			}
		case kindDelete:
			if inverted {
				doc.RemoteInsert(e.el)
				inserts = append(inserts, e.el.Clone())
			} else {
				doc.RemoteDelete(e.el.Ref())
				deletes = append(deletes, e.el.Ref())
			}
		case kindFormat:
			patch := e.rec.Patch
			if inverted {
				patch = e.rec.Prev
			}
			doc.RemoteFormat(e.rec.Ref, patch)
			formats = append(formats, crdt.FormatRecord{Ref: e.rec.Ref, Patch: patch})
		}
	}

	var msgs []wire.Message
	switch {
	case len(inserts) == 1:
		msgs = append(msgs, wire.NewInsert(inserts[0]))
	case len(inserts) > 1:
		msgs = append(msgs, wire.NewBatchInsert(m.site, inserts))
	}
	switch {
	case len(deletes) == 1:
		msgs = append(msgs, wire.NewDelete(deletes[0]))
	case len(deletes) > 1:
		msgs = append(msgs, wire.NewBatchDelete(m.site, deletes))
	}
	switch {
	case len(formats) == 1:
		msgs = append(msgs, wire.NewFormat(m.site, formats[0].Ref, formats[0].Patch))
	case len(formats) > 1:
		msgs = append(msgs, wire.NewBatchFormat(m.site, formats))
	}
	return msgs
}
