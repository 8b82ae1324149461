package model

import (
	"errors"
	"fmt"
)

// ErrUnknownLabel is returned when decoding a label no value prints as.
var ErrUnknownLabel = errors.New("unknown label")

// MarshalText encodes d as its short label, e.g. "MXM".
func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText decodes a label produced by MarshalText.
func (d *Difficulty) UnmarshalText(b []byte) error {
	i, err := labelIndex(difficultyLabels[:], string(b), "difficulty")
	if err != nil {
		return err
	}
	*d = Difficulty(i) //nolint:gosec // bounded by the label table
	return nil
}

// MarshalText encodes g as its letter, e.g. "AAA+".
func (g Grade) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText decodes a label produced by MarshalText.
func (g *Grade) UnmarshalText(b []byte) error {
	i, err := labelIndex(gradeLabels[:], string(b), "grade")
	if err != nil {
		return err
	}
	*g = Grade(i) //nolint:gosec // bounded by the label table
	return nil
}

// MarshalText encodes c as its lamp label, e.g. "PUC".
func (c ClearType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a label produced by MarshalText.
func (c *ClearType) UnmarshalText(b []byte) error {
	i, err := labelIndex(clearLabels[:], string(b), "clear type")
	if err != nil {
		return err
	}
	*c = ClearType(i) //nolint:gosec // bounded by the label table
	return nil
}

func labelIndex(labels []string, s, kind string) (int, error) {
	for i, l := range labels {
		if l == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownLabel, kind, s)
}
