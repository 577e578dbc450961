package island

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned for an Op whose kind is not add, set or toggle.
var ErrUnknownOp = errors.New("unknown op")

// OpKind names a state operation.
type OpKind string

const (
	// OpAdd adds Value to the number at Key.
	OpAdd OpKind = "add"
	// OpSet stores Value at Key.
	OpSet OpKind = "set"
	// OpToggle negates the truthiness of Key.
	OpToggle OpKind = "toggle"
)

// Op is one deterministic state change. The same Op list is executed by the
// browser runtime, so ops carry data only.
type Op struct {
	Kind  OpKind `json:"op"`
	Key   string `json:"key"`
	Value any    `json:"value,omitempty"`
}

// Add returns an op adding by to the number at key.
func Add(key string, by int64) Op {
	return Op{Kind: OpAdd, Key: key, Value: by}
}

// Set returns an op storing value at key.
func Set(key string, value any) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

// Toggle returns an op negating key.
func Toggle(key string) Op {
	return Op{Kind: OpToggle, Key: key}
}

// Action is an ordered list of ops run for one event.
type Action []Op

// Actions maps action names, as used in data-on-click, to their ops.
type Actions map[string]Action

func (a Actions) clone() Actions {
	out := make(Actions, len(a))
	for name, ops := range a {
		out[name] = append(Action(nil), ops...)
	}
	return out
}

func (a Actions) validate() error {
	for name, ops := range a {
		if name == "" {
			return fmt.Errorf("action with empty name")
		}
		for i, op := range ops {
			if op.Key == "" {
				return fmt.Errorf("action %s op %d: empty key", name, i)
			}
			switch op.Kind {
			case OpAdd, OpSet, OpToggle:
			default:
				return fmt.Errorf("action %s op %d: %w %q", name, i, ErrUnknownOp, op.Kind)
			}
			if err := checkValue(fmt.Sprintf("%s[%d].value", name, i), op.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply runs action against a copy of state and returns the result. The
// input state is never modified.
func Apply(state State, action Action) (State, error) {
	next := state.Clone()
	for _, op := range action {
		switch op.Kind {
		case OpAdd:
			next[op.Key] = addNumbers(toNumber(next[op.Key]), toNumber(op.Value)).value()
		case OpSet:
			next[op.Key] = op.Value
		case OpToggle:
			next[op.Key] = !truthy(next[op.Key])
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownOp, op.Kind)
		}
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}
