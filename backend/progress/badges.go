package progress

// Badge codes awarded from streak state. Streak badges key off Longest
// so a badge survives the streak that earned it being broken.
var badgeRules = []struct {
	Code   string
	Earned func(state StreakState) bool
}{
	{"first_session", func(s StreakState) bool { return len(s.DatesStudied) >= 1 }},
	{"streak_3", func(s StreakState) bool { return s.Longest >= 3 }},
	{"streak_7", func(s StreakState) bool { return s.Longest >= 7 }},
	{"streak_30", func(s StreakState) bool { return s.Longest >= 30 }},
	{"days_10", func(s StreakState) bool { return len(s.DatesStudied) >= 10 }},
	{"days_50", func(s StreakState) bool { return len(s.DatesStudied) >= 50 }},
	{"days_100", func(s StreakState) bool { return len(s.DatesStudied) >= 100 }},
}

// EarnedBadges returns every badge code the given state qualifies for,
// in rule order. Callers diff against already-persisted codes.
func EarnedBadges(state StreakState) []string {
	var codes []string
	for _, r := range badgeRules {
		if r.Earned(state) {
			codes = append(codes, r.Code)
		}
	}
	return codes
}
