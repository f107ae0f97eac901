// Package export renders a document snapshot for consumers outside the
// engine: plain text for clipboard-style export and styled spans for
// rich-text interchange.
package export

import (
	"strings"

	"github.com/Zabi-Anwari/CollabCore/crdt"
)

// LineBreak is the element value representing a line break.
const LineBreak = "\n"

// PlainText flattens the sequence into its value concatenation.
func PlainText(els []crdt.Element) string {
	var b strings.Builder
	for _, el := range els {
		b.WriteString(el.Value)
	}
	return b.String()
}

// Span is one maximal run of characters sharing identical attributes,
// or a line-break marker.
type Span struct {
	Text       string          `json:"text,omitempty"`
	Attributes crdt.Attributes `json:"attributes,omitempty"`
	Break      bool            `json:"break,omitempty"`
}

// Spans renders the sequence as styled spans in document order. Each
// line-break element becomes its own Break span; between breaks,
// adjacent elements with equal attribute sets collapse into one span.
func Spans(els []crdt.Element) []Span {
	var spans []Span
	var run strings.Builder
	var runAttrs crdt.Attributes
	open := false

	flush := func() {
		if open {
			spans = append(spans, Span{Text: run.String(), Attributes: runAttrs.Clone()})
			run.Reset()
			open = false
		}
	}

	for _, el := range els {
		if el.Value == LineBreak {
			flush()
			spans = append(spans, Span{Break: true})
			continue
		}
		if open && !runAttrs.Equal(el.Attributes) {
			flush()
		}
		if !open {
			runAttrs = el.Attributes
			open = true
		}
		run.WriteString(el.Value)
	}
	flush()
	return spans
}
