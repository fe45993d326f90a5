package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapClassMatchesClassAndCause(t *testing.T) {
	cause := New("connection reset")
	err := WrapClass(ErrStorage, cause, "failed to persist post")

	assert.True(t, IsStorage(err))
	assert.True(t, Is(err, cause))
	assert.False(t, Is(err, ErrNotify))
	assert.Contains(t, err.Error(), "failed to persist post")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrapClassNilErr(t *testing.T) {
	assert.Nil(t, WrapClass(ErrStorage, nil, "ignored"))
}

func TestWrapWithCode(t *testing.T) {
	err := WrapWithCode(New("boom"), "SHEETS_INIT_FAILED", "failed to create sheets service")

	assert.Equal(t, "SHEETS_INIT_FAILED", GetCode(err))
	assert.Equal(t, "failed to create sheets service", GetMessage(err))
	assert.Empty(t, GetCode(New("plain")))
}
