// Package wire defines the tagged JSON messages exchanged between
// participants. The relay forwards frames opaquely; only the sending
// and receiving engines interpret them. Unrecognized tags are ignored
// at the receiver, so the vocabulary can grow without breaking peers.
package wire

import (
	"encoding/json"

	"github.com/Zabi-Anwari/CollabCore/crdt"
)

// Message type tags. The set is closed: dispatch handles every tag
// below and drops anything else.
const (
	TypeInsert      = "insert"
	TypeDelete      = "delete"
	TypeFormat      = "format"
	TypeBatchInsert = "batch-insert"
	TypeBatchDelete = "batch-delete"
	TypeBatchFormat = "batch-format"
	TypeRequestSync = "request-sync"
	TypeSyncReply   = "sync-response"
	TypeImport      = "import-document"
	TypeCursor      = "cursor"
	TypeJoin        = "join"
	TypeUserList    = "user-list"
)

// Message is the wire envelope. Type selects which payload fields are
// meaningful; Site identifies the emitter, except for delete where it
// addresses the deleted element's creator.
type Message struct {
	Type string `json:"type"`
	Site string `json:"siteId,omitempty"`

	// insert
	Char *crdt.Element `json:"char,omitempty"`

	// delete / format target
	Position crdt.Position `json:"position,omitempty"`
	CharSite string        `json:"charSiteId,omitempty"`

	// format payload
	Attributes crdt.Attributes `json:"attributes,omitempty"`

	// batch-insert / batch-delete / batch-format
	Ops []BatchOp `json:"ops,omitempty"`

	// sync-response / import-document snapshot
	State []crdt.Element `json:"state,omitempty"`

	// presence
	Cursor int      `json:"cursor,omitempty"`
	Name   string   `json:"name,omitempty"`
	Users  []string `json:"users,omitempty"`
}

// BatchOp is one entry of a batch message. Insert entries carry Char;
// delete entries Position+SiteID; format entries Position+CharSite+
// Attributes.
type BatchOp struct {
	Char       *crdt.Element   `json:"char,omitempty"`
	Position   crdt.Position   `json:"position,omitempty"`
	SiteID     string          `json:"siteId,omitempty"`
	CharSite   string          `json:"charSiteId,omitempty"`
	Attributes crdt.Attributes `json:"attributes,omitempty"`
}

// Encode marshals m for the wire.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire frame. The tag is not validated here; unknown
// types surface to the dispatcher, which drops them.
func Decode(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// Probe is the minimal decode used by the relay to intercept join
// frames without interpreting anything else.
type Probe struct {
	Type string `json:"type"`
	Site string `json:"siteId"`
	Name string `json:"name"`
}

// DecodeProbe parses only the envelope fields the relay cares about.
func DecodeProbe(data []byte) (Probe, error) {
	var p Probe
	err := json.Unmarshal(data, &p)
	return p, err
}

// NewInsert wraps one freshly inserted element.
func NewInsert(el crdt.Element) Message {
	return Message{Type: TypeInsert, Site: el.Site, Char: &el}
}

// NewDelete addresses one element for deletion.
func NewDelete(ref crdt.Ref) Message {
	return Message{Type: TypeDelete, Site: ref.Site, Position: ref.Position}
}

// NewFormat carries an attribute patch for one element.
func NewFormat(site string, ref crdt.Ref, patch crdt.Attributes) Message {
	return Message{
		Type:       TypeFormat,
		Site:       site,
		Position:   ref.Position,
		CharSite:   ref.Site,
		Attributes: patch,
	}
}

// NewBatchInsert groups several inserts into one frame.
func NewBatchInsert(site string, els []crdt.Element) Message {
	ops := make([]BatchOp, len(els))
	for i := range els {
		el := els[i]
		ops[i] = BatchOp{Char: &el}
	}
	return Message{Type: TypeBatchInsert, Site: site, Ops: ops}
}

// NewBatchDelete groups several deletions into one frame.
func NewBatchDelete(site string, refs []crdt.Ref) Message {
	ops := make([]BatchOp, len(refs))
	for i, r := range refs {
		ops[i] = BatchOp{Position: r.Position, SiteID: r.Site}
	}
	return Message{Type: TypeBatchDelete, Site: site, Ops: ops}
}

// NewBatchFormat groups several attribute patches into one frame.
func NewBatchFormat(site string, recs []crdt.FormatRecord) Message {
	ops := make([]BatchOp, len(recs))
	for i, r := range recs {
		ops[i] = BatchOp{
			Position:   r.Ref.Position,
			CharSite:   r.Ref.Site,
			Attributes: r.Patch,
		}
	}
	return Message{Type: TypeBatchFormat, Site: site, Ops: ops}
}

// NewRequestSync asks any peer for a full snapshot.
func NewRequestSync(site string) Message {
	return Message{Type: TypeRequestSync, Site: site}
}

// NewSyncResponse answers a request-sync with the responder's state.
func NewSyncResponse(site string, state []crdt.Element) Message {
	return Message{Type: TypeSyncReply, Site: site, State: state}
}

// NewImport replaces every participant's document with state.
func NewImport(site string, state []crdt.Element) Message {
	return Message{Type: TypeImport, Site: site, State: state}
}

// NewJoin announces a participant to the relay roster.
func NewJoin(site, name string) Message {
	return Message{Type: TypeJoin, Site: site, Name: name}
}

// NewCursor reports the emitter's caret index for presence display.
func NewCursor(site string, index int) Message {
	return Message{Type: TypeCursor, Site: site, Cursor: index}
}

// NewUserList carries the relay's current roster.
func NewUserList(users []string) Message {
	return Message{Type: TypeUserList, Users: users}
}
