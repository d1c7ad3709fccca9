package models

import "time"

// ItemType distinguishes what kind of library entity a practice item tracks.
type ItemType string

const (
	TypeSet  ItemType = "set"
	TypeTune ItemType = "tune"
	TypePart ItemType = "part"
)

// PracticeItem is the persisted practice record for one tune or part,
// keyed in the status store by the item's full composite id.
type PracticeItem struct {
	Type             ItemType   `json:"type"`
	Streak           int        `json:"streak"`
	Score            float64    `json:"score"`
	LastPracticed    *time.Time `json:"last_practiced,omitempty"`
	LastScoreUpdated *time.Time `json:"last_score_updated,omitempty"`
	Missing          bool       `json:"missing"`
}

// NewPracticeItem returns the default record for a freshly discovered item.
func NewPracticeItem(itemType ItemType) *PracticeItem {
	return &PracticeItem{
		Type:    itemType,
		Streak:  0,
		Score:   0.0,
		Missing: false,
	}
}

// State is the full persisted practice status document.
type State struct {
	SchemaVersion   int                      `json:"schema_version"`
	LastUpdated     *time.Time               `json:"last_updated,omitempty"`
	DecayRate       float64                  `json:"decay_rate_percent_per_day"`
	FocusInstrument string                   `json:"focus_instrument"`
	FocusSetIDs     []string                 `json:"focus_set_ids"`
	ShowFocusOnly   bool                     `json:"show_focus_only"`
	SetInstruments  map[string]string        `json:"set_instruments,omitempty"`
	Items           map[string]*PracticeItem `json:"items"`
}

// Item returns the practice record for an id, or nil if none exists.
func (s *State) Item(id string) *PracticeItem {
	return s.Items[id]
}

// Streak returns the current streak for an id; unknown ids count as 0.
func (s *State) Streak(id string) int {
	if item, ok := s.Items[id]; ok {
		return item.Streak
	}
	return 0
}

// Instrument returns the instrument to use for a set: the per-set override
// when one was saved, otherwise the global focus instrument.
func (s *State) Instrument(setID string) string {
	if inst, ok := s.SetInstruments[setID]; ok && inst != "" {
		return inst
	}
	return s.FocusInstrument
}
