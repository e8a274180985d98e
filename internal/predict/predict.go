// Package predict implements the playful engagement forecasting endpoints.
// The score is plain arithmetic over post counters; nothing here learns
// anything.
package predict

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Confidence is always optimistic.
const Confidence = "74.2%"

var topics = []string{
	"AI", "Python", "React", "FastAPI", "Twitter",
	"Tech", "Web Dev", "APIs", "Machine Learning", "Data Science",
}

// Engagement is the forecast for a single post.
type Engagement struct {
	Score       float64  `json:"engagement_score"`
	Predictions []string `json:"predictions"`
	Confidence  string   `json:"confidence"`
}

// Trending is the site-wide forecast.
type Trending struct {
	Topics        []string `json:"trending_topics"`
	NextViralPost string   `json:"next_viral_post"`
	BestTimeRange string   `json:"best_time_to_post"`
}

// Score computes the deterministic engagement score from a post's content
// length and counters, capped at 100.
func Score(contentLength, likes, comments int) float64 {
	score := float64(contentLength)/50 + float64(likes)*10 + float64(comments)*15
	return math.Round(math.Min(100, score)*10) / 10
}

// ForEngagement builds the full forecast for a post.
func ForEngagement(contentLength, likes, comments int) Engagement {
	score := Score(contentLength, likes, comments)
	return Engagement{
		Score: score,
		Predictions: []string{
			fmt.Sprintf("This post will likely get %d more interactions", int(score*0.3)),
			fmt.Sprintf("Peak engagement expected in %d hours", 2+contentLength%5),
			fmt.Sprintf("Viral probability: %d%%", int(math.Min(95, score))),
		},
		Confidence: Confidence,
	}
}

// ForTrending picks three random topics and invents the rest.
func ForTrending() Trending {
	perm := rand.Perm(len(topics))
	picked := []string{topics[perm[0]], topics[perm[1]], topics[perm[2]]}

	start := 9 + rand.IntN(10)
	end := 19 + rand.IntN(5)
	topic := topics[rand.IntN(len(topics))]

	return Trending{
		Topics:        picked,
		NextViralPost: fmt.Sprintf("Posts about %s are 67%% more likely to go viral", topic),
		BestTimeRange: fmt.Sprintf("%d:00 - %d:00", start, end),
	}
}
