package model

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// DiagnosticKind classifies generation failures.
type DiagnosticKind int

const (
	UnsupportedShape DiagnosticKind = iota + 1
	InvalidFieldType
	MalformedDirective
	NameCollision
)

// Sentinel errors matching each DiagnosticKind through errors.Is.
var (
	ErrUnsupportedShape   = errors.New("unsupported shape")
	ErrInvalidFieldType   = errors.New("invalid field type")
	ErrMalformedDirective = errors.New("malformed directive")
	ErrNameCollision      = errors.New("name collision")
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnsupportedShape:
		return "unsupported shape"
	case InvalidFieldType:
		return "invalid field type"
	case MalformedDirective:
		return "malformed directive"
	case NameCollision:
		return "name collision"
	default:
		return "unknown"
	}
}

func (k DiagnosticKind) sentinel() error {
	switch k {
	case UnsupportedShape:
		return ErrUnsupportedShape
	case InvalidFieldType:
		return ErrInvalidFieldType
	case MalformedDirective:
		return ErrMalformedDirective
	case NameCollision:
		return ErrNameCollision
	default:
		return nil
	}
}

// Diagnostic is a positioned generation error.
type Diagnostic struct {
	Kind    DiagnosticKind
	Pos     token.Position
	Message string
}

// NewDiagnostic creates a diagnostic with a formatted message.
func NewDiagnostic(kind DiagnosticKind, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Error formats the diagnostic the way the Go compiler reports errors.
func (d *Diagnostic) Error() string {
	if !d.Pos.IsValid() {
		return d.Message
	}
	return d.Pos.String() + ": " + d.Message
}

// Unwrap exposes the sentinel of the diagnostic kind.
func (d *Diagnostic) Unwrap() error {
	return d.Kind.sentinel()
}

// Diagnostics is a list of diagnostics that can be returned as a single error.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	lines := make([]string, 0, len(ds))
	for _, d := range ds {
		lines = append(lines, d.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap returns the individual diagnostics.
func (ds Diagnostics) Unwrap() []error {
	errs := make([]error, 0, len(ds))
	for _, d := range ds {
		errs = append(errs, d)
	}
	return errs
}

// Err returns nil for an empty list and the list itself otherwise.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// Sort orders diagnostics by file, line and column.
func (ds Diagnostics) Sort() {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i].Pos, ds[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
