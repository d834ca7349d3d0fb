package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsReservedFieldNames(t *testing.T) {
	_, err := New(FieldSpec{Name: QueryIDField, Type: Text})
	require.Error(t, err)

	_, err = New(FieldSpec{Name: AnyTermField, Type: Boolean})
	require.Error(t, err)
}

func TestNew_RejectsDuplicateFields(t *testing.T) {
	_, err := New(
		FieldSpec{Name: "body", Type: Text},
		FieldSpec{Name: "body", Type: Text},
	)
	require.Error(t, err)
}

func TestNew_PreservesDeclarationOrder(t *testing.T) {
	s, err := New(
		FieldSpec{Name: "title", Type: Text},
		FieldSpec{Name: "body", Type: Text},
	)
	require.NoError(t, err)

	fields := s.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "title", fields[0].Name)
	assert.Equal(t, "body", fields[1].Name)
}

func TestField_LookupMissing(t *testing.T) {
	s, err := New(FieldSpec{Name: "body", Type: Text})
	require.NoError(t, err)

	_, ok := s.Field("missing")
	assert.False(t, ok)

	found, ok := s.Field("body")
	assert.True(t, ok)
	assert.Equal(t, Text, found.Type)
}
