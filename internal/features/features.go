// Package features defines the optional feature vocabulary understood by
// fresh-init and the set type used to carry enabled features.
package features

import (
	"fmt"
	"strings"
)

// Flag names one optional feature of the generated project.
type Flag string

const (
	// Twind enables the utility-CSS engine and styles the starter with it.
	Twind Flag = "twind"

	// VSCode adds editor settings and a .gitignore to the project.
	VSCode Flag = "vscode"
)

var vocabulary = []Flag{Twind, VSCode}

var descriptions = map[Flag]string{
	Twind:  "Style the project with utility classes",
	VSCode: "Add VS Code settings and a .gitignore",
}

// Vocabulary returns every known flag in canonical order.
func Vocabulary() []Flag {
	out := make([]Flag, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Description returns the one-line description shown in help and prompts.
func (f Flag) Description() string {
	return descriptions[f]
}

// Prompt returns the confirm question asked when the flag was not given.
func (f Flag) Prompt() string {
	switch f {
	case Twind:
		return "Do you want to use twind for styling?"
	case VSCode:
		return "Do you use VS Code?"
	default:
		return fmt.Sprintf("Enable %s?", f)
	}
}

func (f Flag) index() int {
	for i, v := range vocabulary {
		if v == f {
			return i
		}
	}
	return -1
}

// Set is an immutable, order-insensitive subset of the vocabulary.
type Set struct {
	bits uint32
}

// NewSet builds a set from flags. Unknown flags are an error.
func NewSet(flags ...Flag) (Set, error) {
	var s Set
	for _, f := range flags {
		i := f.index()
		if i < 0 {
			return Set{}, fmt.Errorf("unknown feature %q", f)
		}
		s.bits |= 1 << i
	}
	return s, nil
}

// MustSet is like NewSet but panics on unknown flags.
func MustSet(flags ...Flag) Set {
	s, err := NewSet(flags...)
	if err != nil {
		panic(err)
	}
	return s
}

// Has reports whether f is enabled.
func (s Set) Has(f Flag) bool {
	i := f.index()
	return i >= 0 && s.bits&(1<<i) != 0
}

// With returns a copy of s with f enabled.
func (s Set) With(f Flag) Set {
	if i := f.index(); i >= 0 {
		s.bits |= 1 << i
	}
	return s
}

// Flags returns the enabled flags in vocabulary order.
func (s Set) Flags() []Flag {
	var out []Flag
	for i, f := range vocabulary {
		if s.bits&(1<<i) != 0 {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether no feature is enabled.
func (s Set) Empty() bool {
	return s.bits == 0
}

// String renders the set as a comma separated list in vocabulary order.
func (s Set) String() string {
	flags := s.Flags()
	if len(flags) == 0 {
		return "none"
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}
