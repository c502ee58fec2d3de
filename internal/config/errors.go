package config

import (
	"strings"

	"github.com/pkg/errors"
)

// Error is a configuration problem detected before any network call.
type Error struct {
	Field  string
	EnvVar string
	Reason string
}

func (e *Error) Error() string {
	if e.EnvVar != "" {
		return "config: " + e.EnvVar + " " + e.Reason
	}
	return "config: " + e.Field + " " + e.Reason
}

// Errors aggregates several configuration problems.
type Errors []*Error

func (es Errors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// As lets errors.As find the first *Error inside an aggregate.
func (es Errors) As(target any) bool {
	if len(es) == 0 {
		return false
	}
	if t, ok := target.(**Error); ok {
		*t = es[0]
		return true
	}
	return false
}

// IsConfigError reports whether err is, or wraps, a configuration problem.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
