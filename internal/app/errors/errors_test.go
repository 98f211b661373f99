package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Wrap(NewKind(KindTooLarge, "upload is 600 MB"), "normalize")

	assert.True(t, stderrors.Is(err, ErrTooLarge))
	assert.False(t, stderrors.Is(err, ErrCorruptMedia))
	assert.Equal(t, KindTooLarge, KindOf(err))
}

func TestKindOfThroughStdWrapping(t *testing.T) {
	err := fmt.Errorf("stage failed: %w", ErrSummarize)

	assert.Equal(t, KindSummarize, KindOf(err))
	assert.True(t, stderrors.Is(err, ErrSummarize))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(New("unclassified")))
}

func TestWithKindKeepsExistingKind(t *testing.T) {
	inner := NewKind(KindFetch, "host unreachable")

	err := WithKind(KindTranscription, inner, "transcribe")
	assert.Equal(t, KindFetch, KindOf(err))

	err = WithKind(KindTranscription, stderrors.New("boom"), "transcribe")
	assert.Equal(t, KindTranscription, KindOf(err))
	assert.Equal(t, "transcribe: boom", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Nil(t, WithKind(KindStorage, nil, "x"))
}

func TestUnknownErrorsMatchByMessage(t *testing.T) {
	a := New("same")
	b := New("same")
	c := New("other")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsValidationError(RequiredField("instruction")))
	assert.True(t, stderrors.Is(NotFound("transcription", "7"), ErrNotFound))
	assert.True(t, stderrors.Is(AlreadyExists("account", "bob"), ErrAlreadyExists))
	assert.EqualError(t, InvalidField("units", "must be positive"), "units is invalid: must be positive")
}

func TestWrapKindReplacesKind(t *testing.T) {
	storage := NewKind(KindStorage, "database is locked")
	warning := WrapKind(KindPersistenceWarning, storage, "result was not saved")

	assert.Equal(t, KindPersistenceWarning, KindOf(warning))
	assert.True(t, stderrors.Is(warning, ErrPersistenceWarning))
	assert.True(t, stderrors.Is(warning, ErrStorage))
	assert.EqualError(t, warning, "result was not saved: database is locked")
	assert.Nil(t, WrapKind(KindStorage, nil, "x"))
}
