package letterboxd

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"marquee/internal/film"
	"marquee/internal/logging"
)

// Recommendation pairs a lineup record with its compatibility score.
type Recommendation struct {
	Record    *film.Record
	Score     int
	Reasoning string
}

// Recommend scores every record against the profile and returns the top
// scoring films, highest first. Records scoring zero are dropped.
func Recommend(records []*film.Record, profile *Profile, topN int, logger *slog.Logger) []Recommendation {
	if logger == nil {
		logger = logging.NewNop()
	}
	if topN <= 0 {
		topN = 5
	}

	var scored []Recommendation
	for _, record := range records {
		score, reasoning := scoreRecord(record, profile)
		if score > 0 {
			scored = append(scored, Recommendation{Record: record, Score: score, Reasoning: reasoning})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topN {
		scored = scored[:topN]
	}

	logger.Info("generated recommendations",
		logging.String("username", profile.Username),
		logging.Int("candidates", len(records)),
		logging.Int("recommended", len(scored)))
	return scored
}

// Weights a record can earn against a profile.
const (
	directorMatchPoints = 5
	countryMatchPoints  = 3
	highOverlapPoints   = 2
	someOverlapPoints   = 1
	undistributedPoints = 1

	highOverlapThreshold = 5
	someOverlapThreshold = 3
)

func scoreRecord(record *film.Record, profile *Profile) (int, string) {
	score := 0
	var reasons []string

	director := strings.TrimSpace(record.Director)
	if director != "" {
		if count, ok := profile.Directors[director]; ok {
			score += directorMatchPoints
			reasons = append(reasons, fmt.Sprintf("Director %s (%d films watched)", director, count))
		}
	}

	country := strings.TrimSpace(record.Country)
	if country != "" {
		if count, ok := profile.Countries[country]; ok {
			score += countryMatchPoints
			reasons = append(reasons, fmt.Sprintf("Country %s (%d films watched)", country, count))
		}
	}

	if record.Description != "" {
		overlap := 0
		for word := range NormalizeWords(record.Description) {
			if profile.Keywords[word] {
				overlap++
			}
		}
		switch {
		case overlap >= highOverlapThreshold:
			score += highOverlapPoints
			reasons = append(reasons, fmt.Sprintf("High keyword similarity (%d matches)", overlap))
		case overlap >= someOverlapThreshold:
			score += someOverlapPoints
			reasons = append(reasons, fmt.Sprintf("Moderate keyword similarity (%d matches)", overlap))
		}
	}

	if !record.LikelyDistributed {
		score += undistributedPoints
		reasons = append(reasons, "Rare/undistributed film")
	}

	if len(reasons) == 0 {
		return score, "Basic compatibility"
	}
	return score, strings.Join(reasons, "; ")
}
