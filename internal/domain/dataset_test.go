package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatasetRef_Valid(t *testing.T) {
	ref, err := ParseDatasetRef("uciml/pima-indians-diabetes-database")
	require.NoError(t, err)
	assert.Equal(t, "uciml", ref.Owner)
	assert.Equal(t, "pima-indians-diabetes-database", ref.Name)
	assert.Equal(t, "uciml/pima-indians-diabetes-database", ref.String())
}

func TestParseDatasetRef_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no separator", input: "diabetes"},
		{name: "two separators", input: "a/b/c"},
		{name: "empty owner", input: "/name"},
		{name: "empty name", input: "owner/"},
		{name: "only separator", input: "/"},
		{name: "double separator", input: "owner//name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDatasetRef(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDatasetRef))
		})
	}
}

func TestDatasetSet(t *testing.T) {
	s := NewDatasetSet("a/one", "b/two", "a/one")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a/one"))
	assert.False(t, s.Has("c/three"))

	s.Add("c/three")
	assert.True(t, s.Has("c/three"))
}
