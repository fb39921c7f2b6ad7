package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid("1234567"))
	assert.True(t, Valid("123456789"))
	assert.True(t, Valid("1234567890123"))

	assert.False(t, Valid(""))
	assert.False(t, Valid("123456"))
	assert.False(t, Valid("12345678"))
	assert.False(t, Valid("12345678901234"))
	assert.False(t, Valid("12345a7"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1234567890123", Normalize(" 12345-6789012-3 "))
}
