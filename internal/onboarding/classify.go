package onboarding

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Afrawles/onboardtracker/internal/asana"
)

var titlePattern = regexp.MustCompile(`^Onboard\s+(.+)$`)

// ParseName extracts the person's name from a task titled "Onboard <name>".
func ParseName(title string) (string, bool) {
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

// CompilePattern builds the case-insensitive matcher for a milestone subtask name.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("milestone pattern cannot be empty")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid milestone pattern %q: %w", pattern, err)
	}
	return re, nil
}

// FindMilestone returns the state of the first subtask whose name matches re.
// Incomplete matches keep their task GID but no timestamp.
func FindMilestone(subtasks []asana.Task, re *regexp.Regexp) Milestone {
	for _, st := range subtasks {
		if !re.MatchString(st.Name) {
			continue
		}
		if st.Completed {
			return Milestone{Completed: true, CompletedAt: st.CompletedAt, TaskGID: strPtr(st.GID)}
		}
		return Milestone{Completed: false, TaskGID: strPtr(st.GID)}
	}
	return Milestone{}
}

// EquipmentReady requires both the laptop and the peripherals milestones.
// The laptop task is the reference link.
func EquipmentReady(laptop, peripherals Milestone) Milestone {
	m := Milestone{TaskGID: laptop.TaskGID}
	if laptop.Completed && peripherals.Completed {
		m.Completed = true
		m.CompletedAt = laterTimestamp(laptop.CompletedAt, peripherals.CompletedAt)
	}
	return m
}

func laterTimestamp(a, b *string) *string {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	ta, errA := time.Parse(time.RFC3339, *a)
	tb, errB := time.Parse(time.RFC3339, *b)
	if errA == nil && errB == nil {
		if tb.After(ta) {
			return b
		}
		return a
	}
	if *b > *a {
		return b
	}
	return a
}

// StartDateMilestone marks the start date reached when it is on or before the
// current day. Time of day is ignored.
func StartDateMilestone(date *asana.DateValue, taskGID string, now time.Time) StartDateStatus {
	s := StartDateStatus{
		Milestone: Milestone{TaskGID: strPtr(taskGID)},
		Date:      date,
	}
	if date == nil || date.Date == "" {
		return s
	}

	start, err := time.ParseInLocation(dateLayout, date.Date, now.Location())
	if err != nil {
		return s
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !start.After(today) {
		s.Completed = true
		s.CompletedAt = strPtr(date.Date)
	}
	return s
}

// IsRemote reports whether the person works outside the on-site state.
func IsRemote(state *string, onsiteState string) bool {
	return state == nil || *state != onsiteState
}
