package semester

import "time"

// Current picks the semester for now: among semesters containing now the one
// with the latest start date; otherwise the latest one that started on or
// before now; otherwise the latest one overall.
func Current(semesters []Semester, now time.Time) (Semester, bool) {
	if len(semesters) == 0 {
		return Semester{}, false
	}

	var containing, started, latest *Semester
	for i := range semesters {
		s := &semesters[i]
		if latest == nil || s.StartDate.After(latest.StartDate) {
			latest = s
		}
		if s.StartDate.After(now) {
			continue
		}
		if started == nil || s.StartDate.After(started.StartDate) {
			started = s
		}
		if s.Contains(now) && (containing == nil || s.StartDate.After(containing.StartDate)) {
			containing = s
		}
	}

	switch {
	case containing != nil:
		return *containing, true
	case started != nil:
		return *started, true
	default:
		return *latest, true
	}
}

// Previous returns the semester with the greatest start date strictly before
// target's start date.
func Previous(semesters []Semester, target Semester) (Semester, bool) {
	var best *Semester
	for i := range semesters {
		s := &semesters[i]
		if !s.StartDate.Before(target.StartDate) {
			continue
		}
		if best == nil || s.StartDate.After(best.StartDate) {
			best = s
		}
	}
	if best == nil {
		return Semester{}, false
	}
	return *best, true
}

// ForYear returns the semesters of calendar year y in start date order.
func ForYear(semesters []Semester, y int) []Semester {
	result := make([]Semester, 0, 3)
	for _, s := range semesters {
		if s.InYear(y) {
			result = append(result, s)
		}
	}
	return result
}

func IDs(semesters []Semester) []uint {
	ids := make([]uint, 0, len(semesters))
	for _, s := range semesters {
		ids = append(ids, s.ID)
	}
	return ids
}
