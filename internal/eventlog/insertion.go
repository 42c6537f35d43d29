// evtship/agent/internal/eventlog/insertion.go

package eventlog

import "strings"

// insertState tracks progress through the label/value grammar of an
// event message. The zero value (awaitingParent) is the start state.
type insertState int

const (
	awaitingParent insertState = iota // no outer label seen yet
	awaitingChild                     // outer label set, need an inner label
	awaitingValue                     // inner label pending, need its value
)

// insertionDelimiter reports the characters that separate message
// segments. Runs of them collapse to a single split point and are
// never kept as segments.
func insertionDelimiter(r rune) bool {
	return r == '\r' || r == '\n' || r == '\t'
}

// ParseInsertionData decomposes an event message into a two-level
// label/value mapping. Segments containing a colon are labels; the
// first label opens the outer key, the next one the inner key, and a
// following plain segment is stored as the value for that pair. Two
// labels in a row shift the window: the pending inner label is
// promoted to outer and the new segment takes its place. Segments
// matching no rule are dropped. The function never fails; unexpected
// input degrades to a partial or empty mapping.
func ParseInsertionData(message string) map[string]map[string]string {
	result := make(map[string]map[string]string)

	var parent, child string
	state := awaitingParent

	for _, segment := range strings.FieldsFunc(message, insertionDelimiter) {
		hasColon := strings.Contains(segment, ":")

		switch state {
		case awaitingParent:
			if hasColon {
				parent = segment
				state = awaitingChild
			}
		case awaitingChild:
			if hasColon {
				child = segment
				state = awaitingValue
			}
		case awaitingValue:
			if hasColon {
				// Promote the pending child to parent; this label is
				// the new child.
				parent = child
				child = segment
			} else {
				inner, ok := result[parent]
				if !ok {
					inner = make(map[string]string)
					result[parent] = inner
				}
				inner[child] = segment
				state = awaitingChild
			}
		}
	}

	return result
}

// firstLine returns the message up to the first delimiter run,
// trimmed. Messages made only of delimiters collapse to the empty
// string.
func firstLine(message string) string {
	fields := strings.FieldsFunc(message, insertionDelimiter)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(fields[0])
}
