package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReference(t *testing.T) {
	issued := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	ref, err := FormatReference(DefaultReferenceTemplate, issued, 42)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260831-000042", ref)

	ref, err = FormatReference("{YY}/{SEQ}", issued, 7)
	require.NoError(t, err)
	assert.Equal(t, "26/7", ref)
}

func TestFormatReferenceErrors(t *testing.T) {
	issued := time.Now()

	_, err := FormatReference("", issued, 1)
	assert.Error(t, err)

	_, err = FormatReference("{SEQ}", issued, 0)
	assert.Error(t, err)

	_, err = FormatReference("{NOPE}", issued, 1)
	assert.Error(t, err)
}
