package transforms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaohan713/vision/datapoint"
)

func TestNewLambdaValidation(t *testing.T) {
	_, err := NewLambda(nil)
	assert.Error(t, err)
}

func TestLambdaReachesEveryLeaf(t *testing.T) {
	upper, err := NewLambda(func(v any) (any, error) {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s), nil
		}
		return v, nil
	})
	require.NoError(t, err)

	out, err := upper.Apply(map[string]any{
		"caption": "a dog",
		"tags":    []any{"outdoor", "daytime"},
		"count":   2,
	})
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.Equal(t, "A DOG", result["caption"], "unrestricted lambdas see Other leaves too")
	assert.Equal(t, []any{"OUTDOOR", "DAYTIME"}, result["tags"])
	assert.Equal(t, 2, result["count"])
}

func TestLambdaKindRestriction(t *testing.T) {
	image := testImage(t, 4, 4)
	mask := testMask(t, 1, 4, 4)

	var visited []datapoint.Kind
	record, err := NewLambda(func(v any) (any, error) {
		visited = append(visited, datapoint.Classify(v))
		return v, nil
	}, datapoint.KindImage)
	require.NoError(t, err)

	out, err := record.Apply(map[string]any{"image": image, "mask": mask, "label": "x"})
	require.NoError(t, err)
	result := out.(map[string]any)

	assert.Equal(t, []datapoint.Kind{datapoint.KindImage}, visited, "only the listed kinds reach the function")
	assert.Same(t, mask, result["mask"], "excluded leaves pass by identity")
	assert.Same(t, image, result["image"], "the function returned its input unchanged")
}

func TestLambdaErrorNamesLeaf(t *testing.T) {
	boom, err := NewLambda(func(v any) (any, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)

	_, err = boom.Apply([]any{"only"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaf 0 (other)")
}
