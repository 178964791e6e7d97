package errors

import (
	"fmt"

	"github.com/mezonai/stakeledger/jsonx"
)

// StakeErrorCode identifies a failure kind. Two errors with the same code
// are considered equal by errors.Is regardless of their message.
type StakeErrorCode string

const (
	// Input errors
	ErrCodeInvalidAmount    StakeErrorCode = "invalid_amount"
	ErrCodeInvalidTimestamp StakeErrorCode = "invalid_timestamp"
	ErrCodeInvalidConfig    StakeErrorCode = "invalid_config"

	// Balance errors
	ErrCodeInsufficientBalance StakeErrorCode = "insufficient_balance"
	ErrCodeInsufficientStake   StakeErrorCode = "insufficient_stake"
	ErrCodeStakeLocked         StakeErrorCode = "stake_locked"
	ErrCodeStakeOutstanding    StakeErrorCode = "stake_outstanding"

	// Authorization errors
	ErrCodeUnauthorized      StakeErrorCode = "unauthorized"
	ErrCodeInvalidCapability StakeErrorCode = "invalid_capability"

	// Arithmetic errors
	ErrCodeOverflow  StakeErrorCode = "overflow"
	ErrCodeUnderflow StakeErrorCode = "underflow"

	// Registry errors
	ErrCodeUnsupportedToken       StakeErrorCode = "unsupported_token"
	ErrCodeTokenAlreadySupported  StakeErrorCode = "token_already_supported"
	ErrCodeRegistryFull           StakeErrorCode = "registry_full"
	ErrCodePoolNotInitialized     StakeErrorCode = "pool_not_initialized"
	ErrCodePoolAlreadyInitialized StakeErrorCode = "pool_already_initialized"
	ErrCodeAccountNotFound        StakeErrorCode = "account_not_found"
)

// StakeError is the error type returned by every staking operation.
type StakeError struct {
	Code    StakeErrorCode `json:"code"`
	Message string         `json:"message"`
}

// Error implements the error interface
func (e *StakeError) Error() string {
	b, err := jsonx.Marshal(StakeError{
		Code:    e.Code,
		Message: e.Message,
	})
	if err != nil {
		return string(e.Code) + ": " + e.Message
	}
	return string(b)
}

// Is reports whether target carries the same code.
func (e *StakeError) Is(target error) bool {
	t, ok := target.(*StakeError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

const (
	ErrMsgInvalidAmount          = "Amount must be greater than 0"
	ErrMsgInvalidTimestamp       = "Time moved backwards"
	ErrMsgInvalidConfig          = "Configuration is invalid"
	ErrMsgInsufficientBalance    = "Insufficient token balance"
	ErrMsgInsufficientStake      = "Insufficient staked amount"
	ErrMsgStakeLocked            = "Stake is locked"
	ErrMsgStakeOutstanding       = "Pool still holds staked tokens"
	ErrMsgUnauthorized           = "Unauthorized access"
	ErrMsgInvalidCapability      = "Invalid derived capability"
	ErrMsgOverflow               = "Arithmetic overflow"
	ErrMsgUnderflow              = "Arithmetic underflow"
	ErrMsgUnsupportedToken       = "Staking pool does not support this token"
	ErrMsgTokenAlreadySupported  = "Token already supported"
	ErrMsgRegistryFull           = "Supported token registry is full"
	ErrMsgPoolNotInitialized     = "Staking pool is not initialized"
	ErrMsgPoolAlreadyInitialized = "Staking pool already initialized"
	ErrMsgAccountNotFound        = "Stake account does not exist"
)

var (
	ErrInvalidAmount          = &StakeError{Code: ErrCodeInvalidAmount, Message: ErrMsgInvalidAmount}
	ErrInvalidTimestamp       = &StakeError{Code: ErrCodeInvalidTimestamp, Message: ErrMsgInvalidTimestamp}
	ErrInvalidConfig          = &StakeError{Code: ErrCodeInvalidConfig, Message: ErrMsgInvalidConfig}
	ErrInsufficientBalance    = &StakeError{Code: ErrCodeInsufficientBalance, Message: ErrMsgInsufficientBalance}
	ErrInsufficientStake      = &StakeError{Code: ErrCodeInsufficientStake, Message: ErrMsgInsufficientStake}
	ErrStakeLocked            = &StakeError{Code: ErrCodeStakeLocked, Message: ErrMsgStakeLocked}
	ErrStakeOutstanding       = &StakeError{Code: ErrCodeStakeOutstanding, Message: ErrMsgStakeOutstanding}
	ErrUnauthorized           = &StakeError{Code: ErrCodeUnauthorized, Message: ErrMsgUnauthorized}
	ErrInvalidCapability      = &StakeError{Code: ErrCodeInvalidCapability, Message: ErrMsgInvalidCapability}
	ErrOverflow               = &StakeError{Code: ErrCodeOverflow, Message: ErrMsgOverflow}
	ErrUnderflow              = &StakeError{Code: ErrCodeUnderflow, Message: ErrMsgUnderflow}
	ErrUnsupportedToken       = &StakeError{Code: ErrCodeUnsupportedToken, Message: ErrMsgUnsupportedToken}
	ErrTokenAlreadySupported  = &StakeError{Code: ErrCodeTokenAlreadySupported, Message: ErrMsgTokenAlreadySupported}
	ErrRegistryFull           = &StakeError{Code: ErrCodeRegistryFull, Message: ErrMsgRegistryFull}
	ErrPoolNotInitialized     = &StakeError{Code: ErrCodePoolNotInitialized, Message: ErrMsgPoolNotInitialized}
	ErrPoolAlreadyInitialized = &StakeError{Code: ErrCodePoolAlreadyInitialized, Message: ErrMsgPoolAlreadyInitialized}
	ErrAccountNotFound        = &StakeError{Code: ErrCodeAccountNotFound, Message: ErrMsgAccountNotFound}
)

// NewError creates a new StakeError and returns it as error interface
func NewError(code StakeErrorCode, message string) error {
	return &StakeError{
		Code:    code,
		Message: message,
	}
}

// Newf is NewError with a formatted message.
func Newf(code StakeErrorCode, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of a StakeError anywhere in err's chain, or "" if
// there is none.
func CodeOf(err error) StakeErrorCode {
	for err != nil {
		if se, ok := err.(*StakeError); ok {
			return se.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
