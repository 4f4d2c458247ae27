package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCommaReorder(t *testing.T) {
	assert.Equal(t, "victor lai", Normalize("Lai, Victor"))
	assert.Equal(t, Normalize("Victor Lai"), Normalize("Lai, Victor"),
		"Both renderings of the same name must share one key")
}

func TestNormalizeDiacritics(t *testing.T) {
	assert.Equal(t, "genevieve cote", Normalize("Geneviève Côté"))
	assert.Equal(t, Normalize("Genevieve Cote"), Normalize("Geneviève Côté"))
}

func TestNormalizePunctuationAndWhitespace(t *testing.T) {
	assert.Equal(t, "jean luc picard", Normalize("Jean-Luc  Picard"))
	assert.Equal(t, "o brien", Normalize("O'Brien"))
	assert.Equal(t, "victor lai", Normalize("  Lai ,  Victor  "))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalizeMalformedComma(t *testing.T) {
	// A dangling comma has no second part to reorder.
	assert.Equal(t, "lai", Normalize("Lai,"))
}

func TestAlternateKey(t *testing.T) {
	alt, ok := AlternateKey("Lai, Victor")
	assert.True(t, ok)
	assert.Equal(t, "lai victor", alt)

	_, ok = AlternateKey("Victor Lai")
	assert.False(t, ok, "Names without a comma have no alternate key")
}
