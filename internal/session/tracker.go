// Package session implements the practice-session rules: starting a session
// resets an item, each successful repetition grows the streak and score,
// and a failed repetition drops both back to zero.
package session

import (
	"math"
	"time"

	"reprise/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventKind describes what happened during a session.
type EventKind string

const (
	EventStart   EventKind = "start"
	EventSuccess EventKind = "success"
	EventFail    EventKind = "fail"
)

// Event is one practice occurrence, suitable for the history ledger.
type Event struct {
	SessionID  string
	ItemID     string
	ItemType   models.ItemType
	Instrument string
	Kind       EventKind
	Streak     int
	Score      float64
	OccurredAt time.Time
}

// Recorder persists session events. Recording failures must not interrupt
// the session; implementations log and move on.
type Recorder interface {
	Record(event Event)
}

// Session is one live practice run against a single tune or part.
type Session struct {
	ID         string
	ItemID     string
	ItemType   models.ItemType
	SetID      string
	Instrument string
	StartedAt  time.Time
}

// Tracker applies session outcomes to the practice state.
type Tracker struct {
	state    *models.State
	recorder Recorder
	logger   *logrus.Logger
}

// NewTracker creates a tracker over the given practice state.
func NewTracker(state *models.State) *Tracker {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Tracker{
		state:  state,
		logger: logger,
	}
}

// SetRecorder attaches a history recorder. Without one, events are only
// applied to the in-memory state.
func (t *Tracker) SetRecorder(r Recorder) {
	t.recorder = r
}

// SetLogger replaces the tracker's logger.
func (t *Tracker) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// Start begins a session for an item: the item's streak and score reset to
// zero and the chosen instrument is remembered, both per set and as the new
// global focus instrument.
func (t *Tracker) Start(itemType models.ItemType, itemID, setID, instrument string) *Session {
	s := &Session{
		ID:         uuid.New().String(),
		ItemID:     itemID,
		ItemType:   itemType,
		SetID:      setID,
		Instrument: instrument,
		StartedAt:  time.Now().UTC(),
	}

	if setID != "" && instrument != "" {
		if t.state.SetInstruments == nil {
			t.state.SetInstruments = map[string]string{}
		}
		t.state.SetInstruments[setID] = instrument
	}
	if instrument != "" {
		t.state.FocusInstrument = instrument
	}

	t.resetItem(itemID, itemType)

	t.logger.WithFields(logrus.Fields{
		"session_id": s.ID,
		"item_id":    itemID,
		"instrument": instrument,
	}).Info("Practice session started")

	t.record(s, EventStart, 0, 0.0)
	return s
}

// Success records one successful repetition: the streak grows by one and the
// score follows it, ten successes reaching a full 100.
func (t *Tracker) Success(s *Session) (int, float64) {
	now := nowStamp()
	item := t.item(s.ItemID, s.ItemType)
	item.Streak++
	item.Score = math.Min(100.0, float64(item.Streak)/10*100)
	item.LastPracticed = &now
	item.LastScoreUpdated = &now

	t.record(s, EventSuccess, item.Streak, item.Score)
	return item.Streak, item.Score
}

// Fail records a failed repetition, dropping the streak and score to zero.
func (t *Tracker) Fail(s *Session) {
	t.resetItem(s.ItemID, s.ItemType)
	t.record(s, EventFail, 0, 0.0)
}

// ResetPart zeroes a part's record outside any session (the "start over"
// action on a part).
func (t *Tracker) ResetPart(partID string) {
	t.resetItem(partID, models.TypePart)
}

// item fetches or creates the practice record for an id.
func (t *Tracker) item(id string, itemType models.ItemType) *models.PracticeItem {
	if item, ok := t.state.Items[id]; ok {
		return item
	}
	item := models.NewPracticeItem(itemType)
	t.state.Items[id] = item
	return item
}

func (t *Tracker) resetItem(id string, itemType models.ItemType) {
	item := t.item(id, itemType)
	item.Streak = 0
	item.Score = 0.0
}

func (t *Tracker) record(s *Session, kind EventKind, streak int, score float64) {
	if t.recorder == nil {
		return
	}
	t.recorder.Record(Event{
		SessionID:  s.ID,
		ItemID:     s.ItemID,
		ItemType:   s.ItemType,
		Instrument: s.Instrument,
		Kind:       kind,
		Streak:     streak,
		Score:      score,
		OccurredAt: time.Now().UTC(),
	})
}

func nowStamp() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
