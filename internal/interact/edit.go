package interact

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbitlab/internal/body"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

const maxNameLen = 48

// Draft buffers raw form input by field until commit.
type Draft map[dynamo.Field]string

// Limits bound numeric edit input.
type Limits struct {
	MaxRadius float64
	MaxMass   float64
}

// Edit is a validated set of field changes. Nil members are untouched.
type Edit struct {
	Name   *string
	Color  *string
	Mass   *float64
	Size   *float64
	Locked *bool
}

// DraftFor returns the fields the form may edit on b, seeded with current
// values: name and color always, mass for the sun, size and lock for
// planets.
func DraftFor(b *body.Body) Draft {
	d := Draft{
		dynamo.FieldName:  b.Name,
		dynamo.FieldColor: b.Color,
	}
	if b.IsSun() {
		d[dynamo.FieldMass] = formatFloat(b.Mass())
	} else {
		d[dynamo.FieldSize] = formatFloat(b.Radius())
		d[dynamo.FieldLocked] = strconv.FormatBool(b.Locked)
	}
	return d
}

// ParseEdit validates every field of d against b. Any invalid field
// rejects the whole edit.
func ParseEdit(b *body.Body, d Draft, lim Limits) (Edit, error) {
	var e Edit
	for _, f := range dynamo.Fields() {
		raw, ok := d[f]
		if !ok {
			continue
		}
		if err := allowed(b, f, raw); err != nil {
			return Edit{}, err
		}
		switch f {
		case dynamo.FieldName:
			name := strings.TrimSpace(raw)
			if name == "" {
				return Edit{}, &dynamo.EditError{Field: f, Value: raw, Reason: "empty"}
			}
			if utf8.RuneCountInString(name) > maxNameLen {
				return Edit{}, &dynamo.EditError{Field: f, Value: raw, Reason: "too long"}
			}
			e.Name = &name
		case dynamo.FieldColor:
			c, err := ParseColor(raw)
			if err != nil {
				return Edit{}, &dynamo.EditError{Field: f, Value: raw, Reason: "not a #rrggbb color"}
			}
			e.Color = &c
		case dynamo.FieldMass:
			m, err := parsePositive(f, raw, lim.MaxMass)
			if err != nil {
				return Edit{}, err
			}
			e.Mass = &m
		case dynamo.FieldSize:
			r, err := parsePositive(f, raw, lim.MaxRadius)
			if err != nil {
				return Edit{}, err
			}
			e.Size = &r
		case dynamo.FieldLocked:
			l, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return Edit{}, &dynamo.EditError{Field: f, Value: raw, Reason: "not a boolean"}
			}
			e.Locked = &l
		}
	}
	return e, nil
}

func allowed(b *body.Body, f dynamo.Field, raw string) error {
	switch f {
	case dynamo.FieldMass:
		if !b.IsSun() {
			return &dynamo.EditError{Field: f, Value: raw, Reason: "only the sun's mass is editable"}
		}
	case dynamo.FieldSize, dynamo.FieldLocked:
		if b.IsSun() {
			return &dynamo.EditError{Field: f, Value: raw, Reason: "not editable on the sun"}
		}
	}
	return nil
}

func parsePositive(f dynamo.Field, raw string, max float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &dynamo.EditError{Field: f, Value: raw, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, &dynamo.EditError{Field: f, Value: raw, Reason: "must be positive and finite"}
	}
	if max > 0 && v > max {
		return 0, &dynamo.EditError{Field: f, Value: raw, Reason: "above limit " + formatFloat(max)}
	}
	return v, nil
}

// ParseColor accepts #rrggbb (or #rgb) and returns the normalized hex.
func ParseColor(s string) (string, error) {
	c, err := colorful.Hex(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
