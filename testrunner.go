package arbor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNodeNotFound is reported when a script step names a node that is not in
// the scene.
var ErrNodeNotFound = errors.New("node not found")

// ScriptError ties a failure to the script step that caused it.
type ScriptError struct {
	Step   int
	Action string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script step %d (%s): %v", e.Step, e.Action, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// scriptStep is one action of a JSON test script. Which fields matter
// depends on Action.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Node   string  `json:"node,omitempty"`
}

// scriptAction validates a step at load time and performs it at run time.
// run returns a non-nil error when the step fails against the live scene.
type scriptAction struct {
	check func(st scriptStep) error
	run   func(r *TestRunner, s *Scene, st scriptStep) error
}

var scriptActions = map[string]scriptAction{
	"hover": {
		run: func(_ *TestRunner, s *Scene, st scriptStep) error {
			s.source.InjectHover(st.X, st.Y)
			return nil
		},
	},
	"click": {
		run: func(_ *TestRunner, s *Scene, st scriptStep) error {
			s.source.InjectClick(st.X, st.Y)
			return nil
		},
	},
	"drag": {
		check: needFrames(2),
		run: func(_ *TestRunner, s *Scene, st scriptStep) error {
			s.source.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
			return nil
		},
	},
	"wait": {
		check: needFrames(1),
		run: func(r *TestRunner, _ *Scene, st scriptStep) error {
			r.hold = st.Frames - 1 // the current frame is the first
			return nil
		},
	},
	"front": {
		check: needNode,
		run: func(_ *TestRunner, s *Scene, st scriptStep) error {
			n, err := s.findNamed(st.Node)
			if err != nil {
				return err
			}
			n.base().owner.BringToFront(n)
			return nil
		},
	},
	"back": {
		check: needNode,
		run: func(_ *TestRunner, s *Scene, st scriptStep) error {
			n, err := s.findNamed(st.Node)
			if err != nil {
				return err
			}
			n.base().owner.SendToBack(n)
			return nil
		},
	},
	// An empty node expects nothing to be hovered.
	"expectHover": {
		run: func(_ *TestRunner, s *Scene, st scriptStep) error {
			got := ""
			if h := s.dispatcher.HoveredNode(); h != nil {
				got = h.base().Name
			}
			if got != st.Node {
				return fmt.Errorf("hovered %q, want %q", got, st.Node)
			}
			return nil
		},
	},
}

func needFrames(n int) func(scriptStep) error {
	return func(st scriptStep) error {
		if st.Frames < n {
			return fmt.Errorf("frames must be at least %d, got %d", n, st.Frames)
		}
		return nil
	}
}

func needNode(st scriptStep) error {
	if st.Node == "" {
		return errors.New("missing node name")
	}
	return nil
}

// TestRunner plays a scripted sequence of pointer input, reorders and hover
// expectations against a Scene, one step per frame. Injected samples must
// drain before the next step starts. Attach it with Scene.SetTestRunner.
//
// Actions: hover, click, drag, wait, front, back, expectHover.
type TestRunner struct {
	steps    []scriptStep
	next     int
	hold     int
	finished bool
	failures []error
}

// LoadTestScript parses a JSON test script of the form {"steps": [...]}.
// Unknown fields and actions are rejected, as are steps missing the fields
// their action needs.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script struct {
		Steps []scriptStep `json:"steps"`
	}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		act, ok := scriptActions[st.Action]
		if !ok {
			return nil, fmt.Errorf("parse test script: %w",
				&ScriptError{Step: i, Action: st.Action, Err: errors.New("unknown action")})
		}
		if act.check == nil {
			continue
		}
		if err := act.check(st); err != nil {
			return nil, fmt.Errorf("parse test script: %w", &ScriptError{Step: i, Action: st.Action, Err: err})
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. Each frame the runner
// acts before input is polled.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has run and its input has drained.
func (r *TestRunner) Done() bool {
	return r.finished
}

// Err joins every step failure seen so far, or returns nil.
func (r *TestRunner) Err() error {
	return errors.Join(r.failures...)
}

func (r *TestRunner) step(s *Scene) {
	if r.finished || s.source.Pending() > 0 {
		return
	}
	if r.hold > 0 {
		r.hold--
		return
	}
	if r.next == len(r.steps) {
		r.finished = true
		return
	}

	i := r.next
	st := r.steps[i]
	r.next++
	if err := scriptActions[st.Action].run(r, s, st); err != nil {
		serr := &ScriptError{Step: i, Action: st.Action, Err: err}
		r.failures = append(r.failures, serr)
		s.dispatcher.log().Warn("arbor: script step failed",
			slog.Int("step", i),
			slog.String("action", st.Action),
			slog.Any("error", err),
		)
	}

	if r.next == len(r.steps) && r.hold == 0 && s.source.Pending() == 0 {
		r.finished = true
	}
}

// findNamed returns the first node called name, searching the tree depth
// first in insertion order.
func (s *Scene) findNamed(name string) (Node, error) {
	if n := findNamed(s.root.Children(), name); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrNodeNotFound)
}

func findNamed(l *Layer, name string) Node {
	for _, n := range l.children {
		if n.base().Name == name {
			return n
		}
		if c, ok := n.(Container); ok {
			if found := findNamed(c.Children(), name); found != nil {
				return found
			}
		}
	}
	return nil
}
