package status

import (
	"math"
	"time"

	"reprise/pkg/models"
)

// ApplyDecay lowers tune scores in place based on the time elapsed since
// each tune's last score update, at the document's configured rate in
// percentage points per day. Parts hold their score indefinitely, and sets
// carry no records at all. Items that were never scored are untouched.
// Returns the number of items whose score changed.
func ApplyDecay(state *models.State, now time.Time) int {
	decayed := 0
	rate := state.DecayRate
	stamp := now.UTC().Truncate(time.Second)

	for _, item := range state.Items {
		if item.Type != models.TypeTune {
			continue
		}
		if item.LastScoreUpdated == nil {
			continue
		}

		days := now.Sub(*item.LastScoreUpdated).Seconds() / 86400
		if days <= 0 {
			continue
		}

		score := math.Max(0, item.Score-rate*days)
		score = math.Round(score*10) / 10
		if score != item.Score {
			decayed++
		}
		updated := stamp
		item.Score = score
		item.LastScoreUpdated = &updated
	}

	return decayed
}
