package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Position{1, 2}.Compare(Position{1, 2}))
	assert.Negative(t, Position{1}.Compare(Position{2}))
	assert.Positive(t, Position{2}.Compare(Position{1}))
	// A strict prefix sorts before its extension.
	assert.Negative(t, Position{1}.Compare(Position{1, 0}))
	assert.Positive(t, Position{1, 0}.Compare(Position{1}))
	assert.Negative(t, Position(nil).Compare(Position{0}))
}

func TestBetweenSentinels(t *testing.T) {
	p := Between(nil, nil)
	require.Len(t, p, 1)
	assert.Equal(t, 512, p[0])
}

func TestBetweenBounds(t *testing.T) {
	cases := []struct {
		name          string
		before, after Position
	}{
		{"empty doc", nil, nil},
		{"append", Position{512}, nil},
		{"prepend", nil, Position{1}},
		{"wide gap", Position{5}, Position{100}},
		{"adjacent", Position{5}, Position{6}},
		{"adjacent deep", Position{5, 1000}, Position{5, 1001}},
		{"prefix", Position{5}, Position{5, 3}},
		{"diverge early", Position{5, 1023}, Position{6, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Between(tc.before, tc.after)
			if tc.before != nil {
				assert.Negative(t, tc.before.Compare(p), "result must sort after before")
			} else {
				assert.Positive(t, len(p))
			}
			if tc.after != nil {
				assert.Negative(t, p.Compare(tc.after), "result must sort before after")
			}
		})
	}
}

// Repeated allocation in the same gap must keep producing fresh
// positions that stay strictly ordered.
func TestBetweenRepeatedSamePoint(t *testing.T) {
	lo, hi := Position{1}, Position{2}
	prev := lo
	for i := 0; i < 200; i++ {
		p := Between(prev, hi)
		require.Negative(t, prev.Compare(p), "iteration %d", i)
		require.Negative(t, p.Compare(hi), "iteration %d", i)
		prev = p
	}
}

// Past maxDepth the allocator widens by incrementing instead of
// descending, so identifiers stay bounded even under pathological
// same-prefix pressure.
func TestBetweenWidensAtDepthCap(t *testing.T) {
	before := make(Position, maxDepth+20)
	after := make(Position, maxDepth+20)
	copy(after, before)
	after[len(after)-1] = 1

	p := Between(before, after)
	require.LessOrEqual(t, len(p), maxDepth+1)
	assert.Negative(t, before.Compare(p))
	assert.Equal(t, 1, p[maxDepth])
}

func TestBetweenDeterministic(t *testing.T) {
	a := Between(Position{3}, Position{9})
	b := Between(Position{3}, Position{9})
	assert.Equal(t, 0, a.Compare(b))
}
