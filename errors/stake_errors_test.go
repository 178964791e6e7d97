package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStakeError_IsMatchesByCode(t *testing.T) {
	detailed := Newf(ErrCodeInsufficientStake, "requested %d, staked %d", 10, 5)

	assert.True(t, stderrors.Is(detailed, ErrInsufficientStake))
	assert.False(t, stderrors.Is(detailed, ErrInsufficientBalance))

	wrapped := fmt.Errorf("unstake: %w", detailed)
	assert.True(t, stderrors.Is(wrapped, ErrInsufficientStake))
	assert.Equal(t, ErrCodeInsufficientStake, CodeOf(wrapped))
}

func TestStakeError_ErrorIsJSON(t *testing.T) {
	err := NewError(ErrCodeUnauthorized, "caller is not admin")
	assert.Equal(t, `{"code":"unauthorized","message":"caller is not admin"}`, err.Error())
}

func TestCodeOf_NonStakeError(t *testing.T) {
	assert.Equal(t, StakeErrorCode(""), CodeOf(stderrors.New("boom")))
	assert.Equal(t, StakeErrorCode(""), CodeOf(nil))
}
