package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainJSON(t *testing.T) {
	result, err := Parse([]byte(`{"label":"benign","confidence":91.2}`))
	require.NoError(t, err)
	assert.Equal(t, "benign", result["label"])
	assert.Equal(t, 91.2, result["confidence"])
}

func TestParseSkipsLogNoise(t *testing.T) {
	raw := "loading model...\nwarming up\n{\"label\":\"benign\",\"confidence\":91.2}\n"
	result, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "benign", result["label"])
}

func TestParseLastJSONLineWins(t *testing.T) {
	raw := "{\"label\":\"stale\"}\nretrying\n{\"label\":\"fresh\"}"
	result, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "fresh", result["label"])
}

func TestParseDoesNotRepairBrokenCandidate(t *testing.T) {
	// A line was isolated, so decoding is strict: the parser must not fall
	// back to scanning the rest of the output for something that parses.
	raw := "{\n  \"status\": \"success\"\n}"
	_, err := Parse([]byte(raw))
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestParseInvalidOutput(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"whitespace":     "   \n  ",
		"no json":        "model crashed with a traceback",
		"truncated json": "{\"label\":\"ben",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.ErrorIs(t, err, ErrInvalidOutput)
		})
	}
}
