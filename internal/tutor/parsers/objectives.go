package parsers

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// markerRe matches an objective marker with one optional leading whitespace.
var markerRe = regexp.MustCompile(`\s?\[(\d+)\]`)

// ObjectiveUpdate is the result of scanning one assistant reply.
type ObjectiveUpdate struct {
	// Clean is the reply with every marker removed, as displayed.
	Clean      string
	Objectives []model.Objective
	// Completed holds the 0-based indexes marked by this reply, ascending.
	Completed []int
}

// ApplyObjectiveMarkers marks objective N-1 completed for every [N] in reply.
// Out-of-range markers are ignored but still stripped. The input slice is not
// modified, and applying the same reply twice gives the same result.
func ApplyObjectiveMarkers(reply string, objectives []model.Objective) ObjectiveUpdate {
	updated := model.CloneObjectives(objectives)
	seen := make(map[int]bool)

	for _, m := range markerRe.FindAllStringSubmatch(reply, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(updated) {
			continue
		}
		updated[idx].Completed = true
		seen[idx] = true
	}

	completed := make([]int, 0, len(seen))
	for idx := range seen {
		completed = append(completed, idx)
	}
	sort.Ints(completed)

	return ObjectiveUpdate{
		Clean:      StripObjectiveMarkers(reply),
		Objectives: updated,
		Completed:  completed,
	}
}

func StripObjectiveMarkers(reply string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(reply, ""))
}

// CountCompleted returns how many objectives are done.
func CountCompleted(objectives []model.Objective) int {
	n := 0
	for _, o := range objectives {
		if o.Completed {
			n++
		}
	}
	return n
}
