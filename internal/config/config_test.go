package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputStyle(t *testing.T) {
	style, err := ParseOutputStyle("compressed")
	require.NoError(t, err)
	assert.Equal(t, OutputCompressed, style)

	_, err = ParseOutputStyle("bogus")
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsNegativePrecision(t *testing.T) {
	o := Default()
	o.Precision = -1
	assert.Error(t, o.Validate())
}

func TestEffectivePrecisionFallsBackToFive(t *testing.T) {
	var o Options
	assert.Equal(t, 5, o.EffectivePrecision())
	o.Precision = 8
	assert.Equal(t, 8, o.EffectivePrecision())
}
