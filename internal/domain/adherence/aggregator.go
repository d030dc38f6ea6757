package adherence

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// State classifies one medication for one day.
type State string

const (
	StateTaken   State = "taken"
	StatePending State = "pending"
	StateMissed  State = "missed"
)

// Item is the slice of a medication the aggregator needs: identity and the
// scheduled clock time. Every medication carries one, as-needed ones
// included, and all are evaluated against the same deadline rule.
type Item struct {
	ID            uuid.UUID
	ScheduledTime string
}

// Status is an Item annotated with its state for the day. LogID references
// the taken-log when State is taken.
type Status struct {
	Item
	State State
	LogID *uuid.UUID
}

// Summary holds the per-patient counts derived from a status list.
type Summary struct {
	Total     int  `json:"total"`
	Taken     int  `json:"taken"`
	Remaining int  `json:"remaining"`
	Percent   int  `json:"percent"`
	AllDone   bool `json:"all_done"`
}

// Annotate classifies each item as taken, pending, or missed against one
// snapshot of today's logs. logIDs maps medication ID to the taken-log ID for
// today; presence in the map is definitionally "taken today", no matter how
// late the log was created. Output order follows the input order, which
// callers supply sorted by scheduled time.
//
// Annotate is a pure function of its arguments: identical snapshots yield
// identical status lists.
func Annotate(items []Item, logIDs map[uuid.UUID]uuid.UUID, windowMinutes int, now time.Time) []Status {
	statuses := make([]Status, 0, len(items))
	for _, it := range items {
		st := Status{Item: it, State: StatePending}
		if logID, ok := logIDs[it.ID]; ok {
			id := logID
			st.State = StateTaken
			st.LogID = &id
		} else if IsMissedAt(it.ScheduledTime, windowMinutes, now) {
			st.State = StateMissed
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Summarize derives the day's counts from a status list. Percent is the
// taken share rounded to the nearest integer; an empty list yields the zero
// Summary rather than dividing by zero.
func Summarize(statuses []Status) Summary {
	s := Summary{Total: len(statuses)}
	for _, st := range statuses {
		if st.State == StateTaken {
			s.Taken++
		}
	}
	s.Remaining = s.Total - s.Taken
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Taken) * 100 / float64(s.Total)))
		s.AllDone = s.Remaining == 0
	}
	return s
}
