package transcript

import (
	"strings"

	"hansard/internal/core/names"
)

// ChairState is who presides at a point in the walk, as an unresolved label.
// It is a value: transitions return the next state and nothing outlives one sitting
type ChairState struct {
	label string
}

// NewChairState starts from the declared speaker, else names.DefaultChair
func NewChairState(declared string) ChairState {
	if s := strings.TrimSpace(declared); s != "" {
		return ChairState{label: s}
	}
	return ChairState{label: names.DefaultChair}
}

// Label is the raw chair label
func (c ChairState) Label() string { return c.label }

// Role is the presiding role the current label denotes
func (c ChairState) Role() names.Role { return names.RoleOf(c.label) }

// Marker applies an explicit "[... in the Chair]" paragraph, which always wins
func (c ChairState) Marker(label string) ChairState {
	if s := strings.TrimSpace(label); s != "" {
		return ChairState{label: s}
	}
	return c
}

// Observe applies a speaker label that itself names the Chair. A label naming a person
// replaces anything; a bare role label never replaces a label that already names one
func (c ChairState) Observe(label string) ChairState {
	inferred, ok := names.ChairFromLabel(label)
	if !ok {
		return c
	}
	if _, explicit := names.PersonFromLabel(inferred); explicit {
		return ChairState{label: inferred}
	}
	if _, explicit := names.PersonFromLabel(c.label); explicit {
		return c
	}
	return ChairState{label: inferred}
}
