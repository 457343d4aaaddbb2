package dynamo

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// SunID is reserved for the central body.
const SunID = 0

type Kind int

const (
	Planet Kind = iota
	Sun
)

func (k Kind) String() string {
	switch k {
	case Sun:
		return "sun"
	case Planet:
		return "planet"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "sun":
		*k = Sun
	case "planet", "":
		*k = Planet
	default:
		return fmt.Errorf("unknown kind: %s", b)
	}
	return nil
}

// Field names a property the edit form may change.
type Field int

const (
	FieldName Field = iota
	FieldColor
	FieldMass
	FieldSize
	FieldLocked
)

var fieldNames = map[Field]string{
	FieldName:   "name",
	FieldColor:  "color",
	FieldMass:   "mass",
	FieldSize:   "size",
	FieldLocked: "locked",
}

func (f Field) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField maps a field name back to its Field.
func ParseField(s string) (Field, error) {
	for f, name := range fieldNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field: %s", s)
}

func (f Field) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Field) UnmarshalText(b []byte) error {
	v, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Fields lists the editable fields in form order.
func Fields() []Field {
	return []Field{FieldName, FieldColor, FieldMass, FieldSize, FieldLocked}
}

// BodyView is a copy of one body's state, safe to keep across steps.
type BodyView struct {
	ID       int       `json:"id"`
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Position cp.Vector `json:"position"`
	Velocity cp.Vector `json:"velocity"`
	Radius   float64   `json:"radius"`
	Mass     float64   `json:"mass"`
	Locked   bool      `json:"locked"`
	Held     bool      `json:"held"`

	LockedVelocity *cp.Vector `json:"locked_velocity,omitempty"`
}

// Diagnostics are the orbital quantities of a planet relative to the sun.
type Diagnostics struct {
	Distance   float64 `json:"distance"`
	Angle      float64 `json:"angle"`
	Radial     float64 `json:"radial_velocity"`
	Tangential float64 `json:"tangential_velocity"`
	Force      float64 `json:"gravitational_force"`
}
