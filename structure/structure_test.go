package structure

// Tests for the structure walker: the flatten/unflatten round-trip law,
// leaf identity preservation, the degenerate bare-scalar sample, and the
// mismatch error raised when a rebuild is attempted with the wrong leaf
// count.

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestFlattenRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		sample any
		leaves int
	}{
		{
			name:   "Bare scalar",
			sample: "hello",
			leaves: 1,
		},
		{
			name:   "Bare nil",
			sample: nil,
			leaves: 1,
		},
		{
			name:   "Flat sequence",
			sample: []any{1, "two", 3.0},
			leaves: 3,
		},
		{
			name:   "Flat mapping",
			sample: map[string]any{"image": 1, "label": 2},
			leaves: 2,
		},
		{
			name: "Nested mixed",
			sample: map[string]any{
				"pair":   []any{1, []any{2, 3}},
				"target": map[string]any{"boxes": "b", "labels": "l"},
				"extra":  nil,
			},
			leaves: 6,
		},
		{
			name:   "Empty sequence",
			sample: []any{},
			leaves: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			leaves, spec := Flatten(tc.sample)
			require.Len(t, leaves, tc.leaves, "flatten should produce the expected leaf count")
			assert.Equal(t, tc.leaves, spec.LeafCount(), "spec should record the leaf count")

			rebuilt, err := Unflatten(spec, leaves)
			require.NoError(t, err, "round trip should succeed")
			assert.Equal(t, tc.sample, rebuilt, "round trip should reproduce the sample")
		})
	}
}

func TestFlattenPreservesLeafIdentity(t *testing.T) {
	first := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{1, 2, 3, 4}))
	second := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float32{5, 6}))
	sample := []any{first, map[string]any{"data": second}}

	leaves, spec := Flatten(sample)
	require.Len(t, leaves, 2)
	assert.Same(t, first, leaves[0], "flattening must not copy leaves")
	assert.Same(t, second, leaves[1], "flattening must not copy leaves")

	rebuilt, err := Unflatten(spec, leaves)
	require.NoError(t, err)
	outer := rebuilt.([]any)
	assert.Same(t, first, outer[0], "unmodified leaves must come back by identity")
	assert.Same(t, second, outer[1].(map[string]any)["data"], "unmodified leaves must come back by identity")
}

func TestFlattenOrdersMapKeys(t *testing.T) {
	sample := map[string]any{"b": 2, "a": 1, "c": 3}

	for i := 0; i < 20; i++ {
		leaves, _ := Flatten(sample)
		require.Equal(t, []any{1, 2, 3}, leaves, "map leaves must flatten in sorted key order on every run")
	}
}

func TestUnflattenLeafCountMismatch(t *testing.T) {
	_, spec := Flatten([]any{1, 2, 3})

	_, err := Unflatten(spec, []any{1, 2})
	require.Error(t, err, "dropping a leaf must fail the rebuild")
	assert.True(t, errors.Is(err, ErrStructureMismatch), "mismatch should wrap the sentinel")
	assert.Contains(t, err.Error(), "got 2 leaves, spec records 3")

	_, err = Unflatten(spec, []any{1, 2, 3, 4})
	require.Error(t, err, "adding a leaf must fail the rebuild")
	assert.True(t, errors.Is(err, ErrStructureMismatch), "mismatch should wrap the sentinel")
}

func TestUnflattenNilSpec(t *testing.T) {
	_, err := Unflatten(nil, nil)
	assert.Error(t, err, "a nil spec cannot rebuild anything")
}

func TestUnflattenSubstitutesLeaves(t *testing.T) {
	sample := map[string]any{"image": "old-image", "meta": []any{"old-a", "old-b"}}
	leaves, spec := Flatten(sample)
	require.Equal(t, []any{"old-image", "old-a", "old-b"}, leaves)

	rebuilt, err := Unflatten(spec, []any{"new-image", "new-a", "new-b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"image": "new-image", "meta": []any{"new-a", "new-b"}}, rebuilt,
		"substituted leaves should land in their original positions")
}

func BenchmarkFlattenRoundTrip(b *testing.B) {
	sample := map[string]any{
		"image":  tensor.New(tensor.WithShape(3, 8, 8), tensor.WithBacking(make([]uint8, 3*8*8))),
		"target": map[string]any{"boxes": "b", "labels": "l", "masks": "m"},
		"ids":    []any{1, 2, 3, 4},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		leaves, spec := Flatten(sample)
		if _, err := Unflatten(spec, leaves); err != nil {
			b.Fatalf("round trip failed: %v", err)
		}
	}
}
