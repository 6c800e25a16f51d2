package profanity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCountsPatternsOnce(t *testing.T) {
	s, err := NewScanner([]string{"darn", "heck", "gosh"})
	require.NoError(t, err)

	assert.Equal(t, 0, s.Scan(nil))
	assert.Equal(t, 0, s.Scan([]string{"hello", "world"}))
	assert.Equal(t, 1, s.Scan([]string{"darn", "darn", "darn"}))
	assert.Equal(t, 2, s.Scan([]string{"darn", "it", "heck"}))
	assert.Equal(t, 1, s.Scan([]string{"DARNED"}))
}

func TestScanSeesJoinedTokens(t *testing.T) {
	s, err := NewScanner([]string{"oh,no"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Scan([]string{"oh", "no"}))
	assert.Empty(t, s.ScanWord("oh"))
}

func TestScanWord(t *testing.T) {
	s, err := NewScanner([]string{"darn", "dar", "heck"})
	require.NoError(t, err)

	assert.Equal(t, []string{"darn", "dar"}, s.ScanWord("Darnit"))
	assert.Empty(t, s.ScanWord("fine"))
	assert.Equal(t, []string{"heck"}, s.ScanWord("heckin"))
}

func TestLoadPatternsFailures(t *testing.T) {
	_, err := LoadPatterns(strings.NewReader(`["ok", "(unclosed"]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to compile pattern "(unclosed"`)

	_, err = LoadPatterns(strings.NewReader(`["ok", ""]`))
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = LoadPatterns(strings.NewReader(`{"not": "an array"}`))
	require.Error(t, err)
}

func TestDefaultScanner(t *testing.T) {
	s := DefaultScanner()
	assert.Positive(t, s.Len())
	assert.NotEmpty(t, s.ScanWord("shit"))
	assert.NotEmpty(t, s.ScanWord("Damn"))
	assert.Empty(t, s.ScanWord("classic"))
	assert.Empty(t, s.ScanWord("hello"))
	assert.Equal(t, 1, s.Scan([]string{"well", "damn"}))
}
