package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodedError(t *testing.T) {
	base := errors.New("connection reset")
	coded := WrapCoded(StoreWriteError, "failed to append levels", base)

	assert.Contains(t, coded.Error(), "failed to append levels")
	assert.Contains(t, coded.Error(), "connection reset")
	assert.ErrorIs(t, coded, base)
}

func TestCodeOf(t *testing.T) {
	coded := NewCodedError(NoPartitionError, "no day partition exists")

	assert.Equal(t, NoPartitionError, CodeOf(coded))
	assert.Equal(t, NoPartitionError, CodeOf(fmt.Errorf("reading symbols: %w", coded)))
	assert.Equal(t, GeneralInternalServerError, CodeOf(errors.New("plain")))
	assert.Equal(t, GeneralInternalServerError, CodeOf(nil))
}

func TestHasCode(t *testing.T) {
	coded := NewCodedError(MalformedMessageError, "failed to decode stream frame")
	wrapped := fmt.Errorf("frame 12: %w", coded)

	assert.True(t, HasCode(wrapped, MalformedMessageError))
	assert.False(t, HasCode(wrapped, StoreWriteError))
	assert.False(t, HasCode(nil, StoreWriteError))
}
