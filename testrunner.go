package strata

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input events and screenshots across ticks
// for automated testing. Attach it with Renderer.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

var validActions = map[string]bool{
	"screenshot": true, "click": true, "drag": true, "wait": true,
	"press": true, "move": true, "release": true, "wheel": true, "leave": true,
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !validActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: %w: unknown action %q", i, ErrInvalidArgument, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a runner. Its step runs at the start of every Tick.
func (r *Renderer) SetTestRunner(runner *TestRunner) {
	r.testRunner = runner
}

// Done reports whether all steps in the script have been executed.
func (tr *TestRunner) Done() bool {
	return tr.done
}

// step advances the runner by one tick.
func (tr *TestRunner) step(r *Renderer) {
	if tr.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(r.injectQueue) > 0 {
		return
	}
	if tr.waitCount > 0 {
		tr.waitCount--
		return
	}
	if tr.cursor >= len(tr.steps) {
		tr.done = true
		return
	}

	st := tr.steps[tr.cursor]
	tr.cursor++

	switch st.Action {
	case "screenshot":
		r.Screenshot(st.Label)
	case "click":
		r.InjectClick(st.X, st.Y)
	case "press":
		r.InjectPress(st.X, st.Y)
	case "move":
		r.InjectMove(st.X, st.Y)
	case "release":
		r.InjectRelease(st.X, st.Y)
	case "wheel":
		r.InjectWheel(st.X, st.Y, st.Delta)
	case "leave":
		r.InjectLeave()
	case "drag":
		r.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wait":
		if st.Frames > 0 {
			tr.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if tr.cursor >= len(tr.steps) && tr.waitCount == 0 && len(r.injectQueue) == 0 {
		tr.done = true
	}
}
