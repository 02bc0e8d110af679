package service

import (
	"time"

	"tutorly/pkg/model"
)

// matchWindow picks, from one tutor's open slots, the units covering
// [start, start + duration): one slot for thirty minutes, two
// consecutive slots for sixty. The boolean reports whether every
// required boundary was found.
func matchWindow(slots []*model.Slot, start time.Time, duration model.Duration) ([]*model.Slot, bool) {
	matched := make([]*model.Slot, 0, duration.Units())
	for i := 0; i < duration.Units(); i++ {
		boundary := start.Add(time.Duration(i) * model.SlotLength)

		var found *model.Slot
		for _, slot := range slots {
			if slot.StartTime.Equal(boundary) {
				found = slot
				break
			}
		}
		if found == nil {
			return nil, false
		}
		matched = append(matched, found)
	}
	return matched, true
}

// matchAlternative scans other tutors' open slots for one tutor who can
// cover the whole window alone. Tutors are considered in the order they
// first appear in the input, so with start-time-sorted input the
// earliest-listed tutor wins ties.
func matchAlternative(slots []*model.Slot, start time.Time, duration model.Duration) (string, []*model.Slot, bool) {
	byTutor := make(map[string][]*model.Slot, len(slots))
	var order []string
	for _, slot := range slots {
		if _, seen := byTutor[slot.TutorID]; !seen {
			order = append(order, slot.TutorID)
		}
		byTutor[slot.TutorID] = append(byTutor[slot.TutorID], slot)
	}

	for _, tutorID := range order {
		if matched, ok := matchWindow(byTutor[tutorID], start, duration); ok {
			return tutorID, matched, true
		}
	}
	return "", nil, false
}
