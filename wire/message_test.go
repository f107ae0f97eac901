package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zabi-Anwari/CollabCore/crdt"
	"github.com/Zabi-Anwari/CollabCore/wire"
)

func TestInsertRoundTrip(t *testing.T) {
	el := crdt.Element{
		Value:      "a",
		Position:   crdt.Position{512},
		Site:       "s1",
		Attributes: crdt.Attributes{"bold": true},
	}
	data, err := wire.NewInsert(el).Encode()
	require.NoError(t, err)

	got, err := wire.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeInsert, got.Type)
	assert.Equal(t, "s1", got.Site)
	require.NotNil(t, got.Char)
	assert.Equal(t, el, *got.Char)
}

func TestDeleteCarriesTargetKey(t *testing.T) {
	ref := crdt.Ref{Position: crdt.Position{5, 100}, Site: "s2"}
	data, err := wire.NewDelete(ref).Encode()
	require.NoError(t, err)

	got, err := wire.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeDelete, got.Type)
	assert.Equal(t, ref.Position, got.Position)
	assert.Equal(t, ref.Site, got.Site)
}

func TestFormatDistinguishesEmitterFromTarget(t *testing.T) {
	ref := crdt.Ref{Position: crdt.Position{7}, Site: "creator"}
	m := wire.NewFormat("emitter", ref, crdt.Attributes{"italic": true, "bold": nil})
	data, err := m.Encode()
	require.NoError(t, err)

	got, err := wire.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "emitter", got.Site)
	assert.Equal(t, "creator", got.CharSite)
	// nil patch values survive the wire; they mean "unset this key".
	v, present := got.Attributes["bold"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, true, got.Attributes["italic"])
}

func TestBatchDeleteRoundTrip(t *testing.T) {
	refs := []crdt.Ref{
		{Position: crdt.Position{1}, Site: "a"},
		{Position: crdt.Position{2, 512}, Site: "b"},
	}
	data, err := wire.NewBatchDelete("a", refs).Encode()
	require.NoError(t, err)

	got, err := wire.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeBatchDelete, got.Type)
	require.Len(t, got.Ops, 2)
	assert.Equal(t, refs[1].Position, got.Ops[1].Position)
	assert.Equal(t, "b", got.Ops[1].SiteID)
}

func TestSyncResponseRoundTrip(t *testing.T) {
	state := []crdt.Element{
		{Value: "h", Position: crdt.Position{1}, Site: "s1"},
		{Value: "i", Position: crdt.Position{2}, Site: "s1"},
	}
	data, err := wire.NewSyncResponse("s1", state).Encode()
	require.NoError(t, err)

	got, err := wire.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeSyncReply, got.Type)
	assert.Equal(t, state, got.State)
}

func TestDecodeUnknownTag(t *testing.T) {
	got, err := wire.Decode([]byte(`{"type":"presence-v2","siteId":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "presence-v2", got.Type)
}

func TestDecodeProbe(t *testing.T) {
	data, err := wire.NewJoin("s1", "ada").Encode()
	require.NoError(t, err)
	p, err := wire.DecodeProbe(data)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeJoin, p.Type)
	assert.Equal(t, "ada", p.Name)

	_, err = wire.DecodeProbe([]byte("not json"))
	assert.Error(t, err)
}
