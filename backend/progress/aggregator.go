package progress

import (
	"math"
	"strings"
	"sync"
	"time"

	"studytrack/backend/models"
)

// snapshotTTL is how long a computed snapshot is served from cache
// before Get recomputes it.
const snapshotTTL = 5 * time.Minute

// Snapshot is the dashboard rollup: one percent per core subject plus
// an overall percent computed from the combined topic counts of every
// subject, core or not. Overall is intentionally not the average of
// the three slot percents.
type Snapshot struct {
	Physics     int       `json:"physics"`
	Chemistry   int       `json:"chemistry"`
	Mathematics int       `json:"mathematics"`
	Overall     int       `json:"overall"`
	Timestamp   time.Time `json:"timestamp"`
}

// coreSlots maps the three always-displayable subjects to the
// substring that classifies a subject into that slot. Matching is
// case-insensitive and the first subject in input order wins a slot.
var coreSlots = []struct {
	Name   string
	Needle string
}{
	{"Physics", "physics"},
	{"Chemistry", "chemistry"},
	{"Mathematics", "math"},
}

// SubjectPercent returns the completion percent for one subject's
// topic list. An empty list is 0, not NaN.
func SubjectPercent(topics []models.Topic) int {
	if len(topics) == 0 {
		return 0
	}
	completed := 0
	for _, t := range topics {
		if t.Completed {
			completed++
		}
	}
	return percent(completed, len(topics))
}

func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// EnsureCoreSubjects appends an empty subject for every core slot no
// existing subject matches, so Physics/Chemistry/Mathematics are
// always displayable even before the user adds any data.
func EnsureCoreSubjects(subjects []models.Subject) []models.Subject {
	out := subjects
	for _, slot := range coreSlots {
		if matchSlot(subjects, slot.Needle) == nil {
			out = append(out, models.Subject{Name: slot.Name})
		}
	}
	return out
}

func matchSlot(subjects []models.Subject, needle string) *models.Subject {
	for i := range subjects {
		if strings.Contains(strings.ToLower(subjects[i].Name), needle) {
			return &subjects[i]
		}
	}
	return nil
}

// Overall computes a snapshot from the denormalized Completed/Total
// counters on each subject. The caller is expected to have run
// EnsureCoreSubjects first if it wants the slots populated for a user
// with no matching subjects; missing slots simply read 0.
func Overall(subjects []models.Subject) Snapshot {
	var snap Snapshot
	slots := [3]*int{&snap.Physics, &snap.Chemistry, &snap.Mathematics}
	for i, slot := range coreSlots {
		if s := matchSlot(subjects, slot.Needle); s != nil {
			*slots[i] = percent(s.Completed, s.Total)
		}
	}

	sumCompleted, sumTotal := 0, 0
	for _, s := range subjects {
		sumCompleted += s.Completed
		sumTotal += s.Total
	}
	snap.Overall = percent(sumCompleted, sumTotal)
	return snap
}

// Aggregator serves per-user snapshots with a 5-minute cache and
// broadcasts refreshes on the event bus.
type Aggregator struct {
	mu        sync.Mutex
	snapshots map[uint]Snapshot
	bus       *Bus

	now func() time.Time // injectable for tests
}

func NewAggregator(bus *Bus) *Aggregator {
	return &Aggregator{
		snapshots: make(map[uint]Snapshot),
		bus:       bus,
		now:       time.Now,
	}
}

// Get returns the cached snapshot unmodified while it is younger than
// five minutes, otherwise calls load, computes a fresh snapshot and
// caches it. load is only invoked on a cache miss.
func (a *Aggregator) Get(userID uint, load func() []models.Subject) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if snap, ok := a.snapshots[userID]; ok && a.now().Sub(snap.Timestamp) < snapshotTTL {
		return snap
	}

	snap := Overall(load())
	snap.Timestamp = a.now()
	a.snapshots[userID] = snap
	return snap
}

// Refresh force-overwrites the cached snapshot, stamping it if the
// caller did not, and notifies both progress topics. Used after bulk
// topic toggles so other readers see the new numbers without polling.
func (a *Aggregator) Refresh(userID uint, snap Snapshot) Snapshot {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = a.now()
	}

	a.mu.Lock()
	a.snapshots[userID] = snap
	a.mu.Unlock()

	if a.bus != nil {
		a.bus.Publish(EventProgressUpdated, Event{UserID: userID, Snapshot: snap})
		a.bus.Publish(EventSubjectProgressUpdated, Event{UserID: userID, Snapshot: snap})
	}
	return snap
}

// Invalidate drops the cached snapshot so the next Get recomputes.
func (a *Aggregator) Invalidate(userID uint) {
	a.mu.Lock()
	delete(a.snapshots, userID)
	a.mu.Unlock()
}
