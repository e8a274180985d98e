package predict_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niklauzi/lyte/internal/predict"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		contentLength int
		likes         int
		comments      int
		want          float64
	}{
		{"empty post", 0, 0, 0, 0},
		{"content only", 100, 0, 0, 2},
		{"likes dominate", 0, 3, 0, 30},
		{"comments weigh more", 0, 0, 3, 45},
		{"combined", 250, 2, 1, 40},
		{"capped at 100", 5000, 50, 50, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, predict.Score(tt.contentLength, tt.likes, tt.comments))
		})
	}
}

func TestForEngagement(t *testing.T) {
	got := predict.ForEngagement(250, 2, 1)

	assert.Equal(t, 40.0, got.Score)
	assert.Equal(t, predict.Confidence, got.Confidence)
	require.Len(t, got.Predictions, 3)
	assert.Equal(t, "This post will likely get 12 more interactions", got.Predictions[0])
	assert.Equal(t, "Peak engagement expected in 2 hours", got.Predictions[1])
	assert.Equal(t, "Viral probability: 40%", got.Predictions[2])
}

func TestForTrending(t *testing.T) {
	got := predict.ForTrending()

	require.Len(t, got.Topics, 3)
	seen := map[string]bool{}
	for _, topic := range got.Topics {
		assert.NotEmpty(t, topic)
		assert.False(t, seen[topic], "topics must not repeat")
		seen[topic] = true
	}

	var start, end int
	_, err := fmt.Sscanf(got.BestTimeRange, "%d:00 - %d:00", &start, &end)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, start, 9)
	assert.LessOrEqual(t, start, 18)
	assert.GreaterOrEqual(t, end, 19)
	assert.LessOrEqual(t, end, 23)

	assert.Contains(t, got.NextViralPost, "more likely to go viral")
}
