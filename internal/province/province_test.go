package province

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Exact(t *testing.T) {
	code := Resolve("Punjab", DefaultList())
	assert.Equal(t, "7", code)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "8", Resolve("sindh", DefaultList()))
	assert.Equal(t, "8", Resolve("SINDH", DefaultList()))
}

func TestResolve_Alias(t *testing.T) {
	kpk := Resolve("KPK", DefaultList())
	full := Resolve("Khyber Pakhtunkhwa", DefaultList())
	assert.Equal(t, full, kpk)
	assert.Equal(t, "6", kpk)

	assert.Equal(t, "5", Resolve("Islamabad", DefaultList()))
	assert.Equal(t, "4", Resolve("AJK", DefaultList()))
}

func TestResolve_Substring(t *testing.T) {
	// input contains the canonical name
	assert.Equal(t, "7", Resolve("Punjab Province", DefaultList()))
	// canonical name contains the input
	assert.Equal(t, "9", Resolve("Baltistan", DefaultList()))
}

func TestResolve_NoMatch(t *testing.T) {
	assert.Equal(t, "", Resolve("Atlantis", DefaultList()))
	assert.Equal(t, "", Resolve("", DefaultList()))
	assert.Equal(t, "", Resolve("   ", DefaultList()))
}

func TestResolve_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "8", Resolve("  Sindh  ", DefaultList()))
}
