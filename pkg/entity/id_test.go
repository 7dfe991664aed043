package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_Unique(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsNil())
}

func TestID_ParseRoundTrip(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestID_ParseInvalid(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestID_TextMarshalRoundTrip(t *testing.T) {
	id := NewID()
	text, err := id.MarshalText()
	assert.NoError(t, err)

	var out ID
	assert.NoError(t, out.UnmarshalText(text))
	assert.Equal(t, id, out)
}

func TestNilID(t *testing.T) {
	assert.True(t, NilID.IsNil())
}
