package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	base := stderrors.New("device vanished")
	err := New(base).
		Component("audiofx").
		Category(CategoryAudioDevice).
		Context("device", "hw:0,0").
		Build()

	assert.Equal(t, "device vanished", err.Error())
	assert.Equal(t, "audiofx", err.Component)
	assert.Equal(t, "audio-device", err.GetCategory())
	assert.Equal(t, "hw:0,0", err.GetContext()["device"])
	assert.False(t, err.Timestamp.IsZero())
	assert.True(t, stderrors.Is(err, base), "wrapped error must unwrap")
}

func TestNewf(t *testing.T) {
	err := Newf("chain not found: %s", "voice").Build()
	assert.Equal(t, "chain not found: voice", err.Error())
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
}

func TestEnhancedError_IsMatchesCategory(t *testing.T) {
	a := Newf("a").Category(CategoryNotFound).Build()
	b := Newf("b").Category(CategoryNotFound).Build()
	c := Newf("c").Category(CategoryConflict).Build()

	assert.True(t, stderrors.Is(a, b), "same category matches")
	assert.False(t, stderrors.Is(a, c), "different category does not")
}

func TestAs(t *testing.T) {
	err := Newf("boom").Category(CategoryProcessing).Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, CategoryProcessing, ee.Category)
}

func TestGetContext_Copy(t *testing.T) {
	err := Newf("x").Context("k", "v").Build()

	ctx := err.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"], "callers get a copy")
}
