package search

import (
	"regexp"
	"strings"

	"github.com/csfalcao/magis/pkg/model"
)

// taskTriggers mark a query as asking about a scheduled event. Such queries
// consult the structured task store before freeform memory scoring: a task
// created from a detected future event is more precise for "when is my..."
// questions than any ranking heuristic.
var taskTriggers = []string{"meeting", "appointment", "when is my"}

// eventTags are required on a task for it to answer a scheduling query
var eventTags = []string{"meeting", "appointment"}

var participantPattern = regexp.MustCompile(`(?i)\bwith\s+([\p{L}]+)`)

// isTaskQuery reports whether the query text should try the task store first
func isTaskQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range taskTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// extractParticipant pulls an event participant name out of a "with X"
// phrase, lowercased. Empty when the query names nobody.
func extractParticipant(text string) string {
	m := participantPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.ToLower(m[1])
}

// filterTasksByParticipant keeps tasks that mention the participant in their
// title, description or tags. A query without a participant keeps everything.
func filterTasksByParticipant(tasks []*model.Task, participant string) []*model.Task {
	if participant == "" {
		return tasks
	}

	var filtered []*model.Task
	for _, t := range tasks {
		surface := strings.ToLower(t.Title + " " + t.Description + " " + strings.Join(t.Tags, " "))
		if strings.Contains(surface, participant) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
