package model

import (
	"errors"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_Error(t *testing.T) {
	pos := token.Position{Filename: "person.go", Line: 12, Column: 2}
	d := NewDiagnostic(InvalidFieldType, pos, "field %s is not optional", "age")

	assert.Equal(t, "person.go:12:2: field age is not optional", d.Error())
	assert.True(t, errors.Is(d, ErrInvalidFieldType))
	assert.False(t, errors.Is(d, ErrUnsupportedShape))

	noPos := NewDiagnostic(UnsupportedShape, token.Position{}, "no position")
	assert.Equal(t, "no position", noPos.Error())
}

func TestDiagnostics_SortAndErr(t *testing.T) {
	var empty Diagnostics
	assert.NoError(t, empty.Err())

	ds := Diagnostics{
		NewDiagnostic(NameCollision, token.Position{Filename: "b.go", Line: 1, Column: 1}, "b"),
		NewDiagnostic(MalformedDirective, token.Position{Filename: "a.go", Line: 9, Column: 3}, "a9"),
		NewDiagnostic(InvalidFieldType, token.Position{Filename: "a.go", Line: 2, Column: 5}, "a2"),
	}
	ds.Sort()

	require.Error(t, ds.Err())
	assert.Equal(t, "a.go:2:5: a2\na.go:9:3: a9\nb.go:1:1: b", ds.Error())
	assert.True(t, errors.Is(ds.Err(), ErrNameCollision))
	assert.True(t, errors.Is(ds.Err(), ErrMalformedDirective))
	assert.False(t, errors.Is(ds.Err(), ErrUnsupportedShape))
}

func TestStruct_Helpers(t *testing.T) {
	s := &Struct{
		Name:       "Pair",
		TypeParams: []*TypeParam{{Name: "K"}, {Name: "V"}},
		Fields:     []*Field{{Name: "key"}, {Name: "value", LegacySkip: true}},
	}
	assert.Equal(t, []string{"K", "V"}, s.TypeArgs())
	assert.True(t, s.HasField("key"))
	assert.False(t, s.HasField("Key"))
	assert.False(t, s.Fields[0].Skipped())
	assert.True(t, s.Fields[1].Skipped())

	plan := &PackagePlan{Structs: []*StructPlan{
		{Methods: []*MethodPlan{{Name: "WithKey"}}},
		{Methods: []*MethodPlan{{Name: "A"}, {Name: "B"}}},
	}}
	assert.Equal(t, 3, plan.MethodCount())
}
