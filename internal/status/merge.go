package status

import (
	"reprise/pkg/models"
)

// Merge inserts default practice records for newly discovered tunes and
// parts. Existing records are never touched, so the merge is strictly
// additive and running it twice with unchanged discovery results is a no-op.
// Sets are organizational only and get no records of their own.
// Returns the number of records inserted.
func Merge(state *models.State, sets []models.SetRecord) int {
	inserted := 0

	for _, set := range sets {
		for _, tune := range set.Tunes {
			id := tune.ID.String()
			if _, ok := state.Items[id]; !ok {
				state.Items[id] = models.NewPracticeItem(models.TypeTune)
				inserted++
			}
		}
		for _, part := range set.Parts {
			id := part.FullID.String()
			if _, ok := state.Items[id]; !ok {
				state.Items[id] = models.NewPracticeItem(models.TypePart)
				inserted++
			}
		}
	}

	return inserted
}
