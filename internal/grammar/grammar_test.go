package grammar

import (
	"fmt"
	"testing"
)

func TestParseLineMarkerMapping(t *testing.T) {
	bullets := []string{"-", "*", "+"}
	markers := []struct {
		marker string
		state  State
	}{
		{" ", StatePending},
		{"x", StateDone},
		{"X", StateDone},
		{"-", StateExecuting},
	}

	for _, bullet := range bullets {
		for _, m := range markers {
			line := fmt.Sprintf("%s [%s] Do the thing", bullet, m.marker)
			task, ok := ParseLine(line, 7)
			if !ok {
				t.Errorf("Expected %q to parse", line)
				continue
			}
			if task.State != m.state {
				t.Errorf("%q: expected state %v, got %v", line, m.state, task.State)
			}
			if task.Line != 7 {
				t.Errorf("%q: expected line 7, got %d", line, task.Line)
			}
			if task.Text != "Do the thing" {
				t.Errorf("%q: expected text 'Do the thing', got %q", line, task.Text)
			}
			if task.Indent != 0 {
				t.Errorf("%q: expected indent 0, got %d", line, task.Indent)
			}
		}
	}
}

func TestParseLineIndentation(t *testing.T) {
	tests := []struct {
		line   string
		indent int
	}{
		{"- [ ] Top level", 0},
		{"  - [ ] Two spaces", 2},
		{"    * [x] Four spaces", 4},
		{"\t+ [-] One tab", 1},
		{" \t - [ ] Mixed", 3},
	}

	for _, test := range tests {
		task, ok := ParseLine(test.line, 0)
		if !ok {
			t.Errorf("Expected %q to parse", test.line)
			continue
		}
		if task.Indent != test.indent {
			t.Errorf("%q: expected indent %d, got %d", test.line, test.indent, task.Indent)
		}
	}
}

func TestParseLineRejectsNonTasks(t *testing.T) {
	lines := []string{
		"",
		"plain prose",
		"# Heading",
		"- plain bullet",
		"- [?] unknown marker",
		"- [xx] double marker",
		"- [] empty brackets",
		"-[ ] missing space after bullet",
		"- [ missing close",
		"1. [ ] numbered list",
		"> [ ] quoted",
		"[ ] no bullet",
	}

	for _, line := range lines {
		if _, ok := ParseLine(line, 0); ok {
			t.Errorf("Expected %q not to parse as a task", line)
		}
	}
}

func TestParseLineEmptyText(t *testing.T) {
	task, ok := ParseLine("- [ ] ", 0)
	if !ok {
		t.Fatal("Expected empty-text task line to parse")
	}
	if task.Text != "" {
		t.Errorf("Expected empty text, got %q", task.Text)
	}
}

func TestParseLineScenarios(t *testing.T) {
	tests := []struct {
		line   string
		state  State
		text   string
		indent int
	}{
		{"- [ ] Write docs", StatePending, "Write docs", 0},
		{"  * [X] Done thing", StateDone, "Done thing", 2},
		{"+ [-] In progress", StateExecuting, "In progress", 0},
	}

	for _, test := range tests {
		task, ok := ParseLine(test.line, 0)
		if !ok {
			t.Fatalf("Expected %q to parse", test.line)
		}
		if task.State != test.state {
			t.Errorf("%q: expected state %v, got %v", test.line, test.state, task.State)
		}
		if task.Text != test.text {
			t.Errorf("%q: expected text %q, got %q", test.line, test.text, task.Text)
		}
		if task.Indent != test.indent {
			t.Errorf("%q: expected indent %d, got %d", test.line, test.indent, task.Indent)
		}
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	states := []State{StatePending, StateExecuting, StateDone}
	for _, state := range states {
		line := fmt.Sprintf("- [%c] thing", MarkerFor(state))
		task, ok := ParseLine(line, 0)
		if !ok {
			t.Fatalf("Expected %q to parse", line)
		}
		if task.State != state {
			t.Errorf("Marker for %v parsed back as %v", state, task.State)
		}
	}
}

func TestMarkerColumn(t *testing.T) {
	line := "  - [-] indented"
	task, ok := ParseLine(line, 0)
	if !ok {
		t.Fatal("Expected line to parse")
	}
	col := MarkerColumn(task.Indent)
	if line[col] != '-' {
		t.Errorf("Expected marker at column %d, found %q", col, line[col])
	}
}
