package jsonblock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
)

func TestExtractBareObject(t *testing.T) {
	out, err := Extract(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractFencedMatchesBare(t *testing.T) {
	fenced := "```json\n{ \"a\": 1 }\n```"
	bare := `{ "a": 1 }`

	fromFenced, err := ExtractObject(fenced)
	require.NoError(t, err)
	fromBare, err := ExtractObject(bare)
	require.NoError(t, err)

	assert.Equal(t, fromBare, fromFenced)
}

func TestExtractSurroundingProse(t *testing.T) {
	out, err := Extract(`Here is the result: {"estimated_probability": 0.6} Hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, `{"estimated_probability": 0.6}`, out)
}

func TestExtractPlainFence(t *testing.T) {
	out, err := Extract("```\n{\"x\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"x": true}`, out)
}

func TestExtractNoObject(t *testing.T) {
	_, err := Extract("no json here")
	assert.True(t, errors.Is(err, domain.ErrNoJSONObject))

	_, err = Extract("} backwards {")
	assert.True(t, errors.Is(err, domain.ErrNoJSONObject))
}

func TestExtractObjectInvalidJSON(t *testing.T) {
	_, err := ExtractObject(`{"a": }`)
	assert.Error(t, err)
}
