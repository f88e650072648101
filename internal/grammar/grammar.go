// Package grammar recognizes markdown checklist lines.
//
// A task line is a run of leading whitespace, a bullet (-, * or +), a single
// space, and a checkbox whose single marker character decides the state:
// "[ ]" pending, "[-]" executing, "[x]"/"[X]" done. Anything else on the line
// is not interpreted.
package grammar

import "strings"

// State represents the checkbox state of a task line.
type State int

const (
	StatePending State = iota
	StateExecuting
	StateDone
)

// String returns the display label for a state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecuting:
		return "executing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Task represents a single recognized checklist line.
type Task struct {
	// Line is the zero-based line index within the owning document.
	Line int
	// Text is the trimmed content after the checkbox.
	Text string
	// State is derived solely from the marker character.
	State State
	// Indent counts leading whitespace characters, display grouping only.
	Indent int
}

const bullets = "-*+"

// MarkerColumn returns the column of the marker character inside the
// brackets for a line with the given indentation: bullet, space, "[".
func MarkerColumn(indent int) int {
	return indent + 3
}

// markerState maps a checkbox marker character to its state.
func markerState(marker byte) (State, bool) {
	switch marker {
	case ' ':
		return StatePending, true
	case '-':
		return StateExecuting, true
	case 'x', 'X':
		return StateDone, true
	default:
		return 0, false
	}
}

// IsTaskLine reports whether a single line matches the checklist grammar.
func IsTaskLine(line string) bool {
	_, ok := ParseLine(line, 0)
	return ok
}

// ParseLine parses one line of text. It returns the recognized task and true,
// or the zero Task and false when the line is not a checklist item. It is
// pure: no state, no side effects.
func ParseLine(line string, lineNumber int) (Task, bool) {
	indent := 0
	for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
		indent++
	}

	rest := line[indent:]
	// Minimum shape after the indent: "- [ ]" is five characters.
	if len(rest) < 5 {
		return Task{}, false
	}
	if !strings.ContainsRune(bullets, rune(rest[0])) {
		return Task{}, false
	}
	if rest[1] != ' ' || rest[2] != '[' || rest[4] != ']' {
		return Task{}, false
	}

	state, ok := markerState(rest[3])
	if !ok {
		return Task{}, false
	}

	return Task{
		Line:   lineNumber,
		Text:   strings.TrimSpace(rest[5:]),
		State:  state,
		Indent: indent,
	}, true
}

// MarkerFor returns the checkbox marker character written for a state.
func MarkerFor(state State) byte {
	switch state {
	case StateExecuting:
		return '-'
	case StateDone:
		return 'x'
	default:
		return ' '
	}
}
