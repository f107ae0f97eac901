// Package session ties one participant's sequence engine and undo
// history to the relay. The caller is the editing surface: it speaks in
// character indices, and the session translates those into CRDT
// operations, broadcasts them, and applies whatever arrives from peers.
//
// All document access is serialized through the session mutex: one
// local action or one inbound message runs to completion before the
// next. The engine and history underneath are lock-free single-owner
// structures; this is the boundary that keeps them that way.
package session

import (
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/Zabi-Anwari/CollabCore/crdt"
	"github.com/Zabi-Anwari/CollabCore/history"
	"github.com/Zabi-Anwari/CollabCore/wire"
)

// Sender transmits one outgoing message to the relay. Swapped for a
// stub in tests and replaced on every reconnect.
type Sender func(wire.Message) error

// Session is one participant in one shared document.
type Session struct {
	mu      sync.Mutex
	site    string
	name    string
	doc     *crdt.Doc
	hist    *history.Manager
	send    Sender
	users   []string
	cursors map[string]int
	log     *log.Entry
}

// New creates a session with a fresh site identifier. undoDepth <= 0
// uses the history default.
func New(name string, undoDepth int) *Session {
	site := uuid.NewString()
	return &Session{
		site:    site,
		name:    name,
		doc:     crdt.NewDoc(site),
		hist:    history.NewManager(site, undoDepth),
		cursors: make(map[string]int),
		log:     log.WithField("site", site),
	}
}

// Site returns the session's site identifier.
func (s *Session) Site() string { return s.site }

// SetSender installs the transmit function. A nil sender silently
// discards outgoing messages (offline editing still works; the caller
// re-syncs on reconnect).
func (s *Session) SetSender(fn Sender) {
	s.mu.Lock()
	s.send = fn
	s.mu.Unlock()
}

func (s *Session) emit(msgs ...wire.Message) {
	if s.send == nil {
		return
	}
	for _, m := range msgs {
		if err := s.send(m); err != nil {
			s.log.WithError(err).WithField("type", m.Type).Warn("send failed")
		}
	}
}

// Insert inserts text at index, one element per rune, as a single undo
// action. Multi-rune inserts go out as one batch-insert frame.
func (s *Session) Insert(index int, text string, attrs crdt.Attributes) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	els := make([]crdt.Element, 0, len(text))
	for _, r := range text {
		els = append(els, s.doc.LocalInsert(index, string(r), attrs))
		index++
	}
	s.hist.RecordInsert(els)
	if len(els) == 1 {
		s.emit(wire.NewInsert(els[0]))
		return
	}
	s.emit(wire.NewBatchInsert(s.site, els))
}

// Delete removes the character at index. Out of range is a no-op.
func (s *Session) Delete(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.doc.LocalDelete(index)
	if !ok {
		return
	}
	s.hist.RecordDelete([]crdt.Element{el})
	s.emit(wire.NewDelete(el.Ref()))
}

// DeleteRange removes [start, end) as one undo action and one
// batch-delete frame. Invalid ranges are no-ops.
func (s *Session) DeleteRange(start, end int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.doc.LocalBatchDelete(start, end)
	if len(removed) == 0 {
		return
	}
	s.hist.RecordDelete(removed)
	if len(removed) == 1 {
		s.emit(wire.NewDelete(removed[0].Ref()))
		return
	}
	refs := make([]crdt.Ref, len(removed))
	for i, el := range removed {
		refs[i] = el.Ref()
	}
	s.emit(wire.NewBatchDelete(s.site, refs))
}

// Format merges patch into every character of [start, end) as one undo
// action.
func (s *Session) Format(start, end int, patch crdt.Attributes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var recs []crdt.FormatRecord
	for i := start; i < end; i++ {
		if rec, ok := s.doc.LocalFormat(i, patch); ok {
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		return
	}
	s.hist.RecordFormat(recs)
	if len(recs) == 1 {
		s.emit(wire.NewFormat(s.site, recs[0].Ref, recs[0].Patch))
		return
	}
	s.emit(wire.NewBatchFormat(s.site, recs))
}

// Undo reverses the latest local action and broadcasts the inverse
// operations. It reports whether anything was undone.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.hist.Undo(s.doc)
	if !ok {
		return false
	}
	s.emit(msgs...)
	return true
}

// Redo re-applies the latest undone action.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.hist.Redo(s.doc)
	if !ok {
		return false
	}
	s.emit(msgs...)
	return true
}

// Import replaces the local document with els and broadcasts an
// import-document so every peer replaces theirs too.
func (s *Session) Import(els []crdt.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.LoadState(els)
	s.emit(wire.NewImport(s.site, s.doc.Elements()))
}

// RequestSync asks peers for a full snapshot. The reply only takes
// effect while the local document is still empty.
func (s *Session) RequestSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(wire.NewRequestSync(s.site))
}

// SetCursor broadcasts the local caret index for presence display.
func (s *Session) SetCursor(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(wire.NewCursor(s.site, index))
}

// Text returns the current document text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Text()
}

// Elements returns a copy of the live sequence for rendering or export.
func (s *Session) Elements() []crdt.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Elements()
}

// Users returns the last roster broadcast by the relay.
func (s *Session) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.users))
	copy(out, s.users)
	return out
}

// Cursors returns the last reported caret index per peer site.
func (s *Session) Cursors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.cursors))
	for k, v := range s.cursors {
		out[k] = v
	}
	return out
}

// Handle applies one inbound message. Stale and duplicate operations
// are silent no-ops; unknown types are dropped. Handle never fails —
// at-least-once redelivery and reordering are expected traffic, not
// errors.
func (s *Session) Handle(msg wire.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Type {
	case wire.TypeInsert:
		if msg.Char != nil {
			s.doc.RemoteInsert(*msg.Char)
		}
	case wire.TypeDelete:
		s.doc.RemoteDelete(crdt.Ref{Position: msg.Position, Site: msg.Site})
	case wire.TypeFormat:
		s.doc.RemoteFormat(crdt.Ref{Position: msg.Position, Site: msg.CharSite}, msg.Attributes)
	case wire.TypeBatchInsert:
		for _, op := range msg.Ops {
			if op.Char != nil {
				s.doc.RemoteInsert(*op.Char)
			}
		}
	case wire.TypeBatchDelete:
		refs := make([]crdt.Ref, 0, len(msg.Ops))
		for _, op := range msg.Ops {
			refs = append(refs, crdt.Ref{Position: op.Position, Site: op.SiteID})
		}
		s.doc.BatchRemoteDelete(refs)
	case wire.TypeBatchFormat:
		for _, op := range msg.Ops {
			s.doc.RemoteFormat(crdt.Ref{Position: op.Position, Site: op.CharSite}, op.Attributes)
		}
	case wire.TypeRequestSync:
		if s.doc.Len() > 0 {
			s.emit(wire.NewSyncResponse(s.site, s.doc.Elements()))
		}
	case wire.TypeSyncReply:
		// First content wins: a late snapshot never clobbers a document
		// the participant has already started composing. A reconnecting
		// session with stale content therefore never re-syncs on its
		// own; callers wanting that call LoadState-via-Import deliberately.
		if s.doc.Len() == 0 {
			s.doc.LoadState(msg.State)
		}
	case wire.TypeImport:
		s.doc.LoadState(msg.State)
	case wire.TypeCursor:
		s.cursors[msg.Site] = msg.Cursor
	case wire.TypeUserList:
		s.users = msg.Users
	}
}
