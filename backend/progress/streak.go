package progress

import (
	"sort"
	"time"

	"studytrack/backend/models"
)

// DefaultMinDailySeconds is the "minimum" streak mode threshold when
// the user has not configured one: 60 minutes of study per day.
const DefaultMinDailySeconds = 3600

const dateLayout = "2006-01-02"

// StreakState is derived from a user's sessions, never persisted.
// DatesStudied holds every distinct date that met the threshold, not
// just the consecutive ones; callers use its length as a total-days
// counter.
type StreakState struct {
	Current      int      `json:"current"`
	Longest      int      `json:"longest"`
	DatesStudied []string `json:"dates_studied"`
	LastDate     string   `json:"last_date,omitempty"`
}

// GroupSessionsByDate sums durations per calendar date. The date is
// always derived from StartTime; the stored Date column is write-once
// display data and can drift if the session crossed a timezone, so it
// is never trusted here. Sessions with a zero StartTime are skipped
// and negative durations clamp to 0 rather than failing.
func GroupSessionsByDate(sessions []models.StudySession) map[string]int {
	totals := make(map[string]int, len(sessions))
	for _, s := range sessions {
		if s.StartTime.IsZero() {
			continue
		}
		d := s.Duration
		if d < 0 {
			d = 0
		}
		totals[s.StartTime.Format(dateLayout)] += d
	}
	return totals
}

// CalculateStreak derives the streak state at evaluation time now.
//
// A date counts when its summed duration reaches thresholdSeconds;
// a threshold of 0 or less means any session counts ("any" mode).
// Current is 0 unless the most recent counting date is now's calendar
// day or the day before, then it is the length of the consecutive-day
// run ending there. Longest scans the entire history, not just the
// current run.
func CalculateStreak(sessions []models.StudySession, thresholdSeconds int, now time.Time) StreakState {
	totals := GroupSessionsByDate(sessions)

	valid := make([]string, 0, len(totals))
	for date, total := range totals {
		if thresholdSeconds <= 0 || total >= thresholdSeconds {
			valid = append(valid, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(valid)))

	state := StreakState{DatesStudied: valid}
	if len(valid) == 0 {
		return state
	}
	state.LastDate = valid[0]

	run, longest := 1, 1
	for i := 1; i < len(valid); i++ {
		if precedes(valid[i], valid[i-1]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	state.Longest = longest

	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if valid[0] != today && valid[0] != yesterday {
		return state
	}

	current := 1
	for i := 1; i < len(valid); i++ {
		if !precedes(valid[i], valid[i-1]) {
			break
		}
		current++
	}
	state.Current = current
	return state
}

// precedes reports whether prev is the calendar day immediately before
// next. Date-only strings parse to UTC midnight, so a flat 24h check
// is exact.
func precedes(prev, next string) bool {
	p, err := time.Parse(dateLayout, prev)
	if err != nil {
		return false
	}
	n, err := time.Parse(dateLayout, next)
	if err != nil {
		return false
	}
	return n.Sub(p) == 24*time.Hour
}

// WouldDeletingSessionBreakStreak simulates removing the session with
// the given ID and reports whether Current would strictly decrease.
// The input slice is not mutated.
func WouldDeletingSessionBreakStreak(sessions []models.StudySession, sessionID uint, thresholdSeconds int, now time.Time) bool {
	remaining := make([]models.StudySession, 0, len(sessions))
	found := false
	for _, s := range sessions {
		if s.ID == sessionID && !found {
			found = true
			continue
		}
		remaining = append(remaining, s)
	}
	if !found {
		return false
	}

	before := CalculateStreak(sessions, thresholdSeconds, now)
	after := CalculateStreak(remaining, thresholdSeconds, now)
	return after.Current < before.Current
}

// ThresholdSeconds converts a user's streak settings into the seconds
// threshold CalculateStreak expects. Settings store minutes; the
// conversion happens here and nowhere else.
func ThresholdSeconds(s models.Settings) int {
	if s.StreakMode == "any" {
		return 0
	}
	if s.MinDailyMinutes <= 0 {
		return DefaultMinDailySeconds
	}
	return s.MinDailyMinutes * 60
}
