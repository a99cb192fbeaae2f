package swap

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure of the package in one of three buckets:
// bad caller-supplied material, a transaction that cannot be built or signed,
// or a chain-query round trip gone wrong.
type ErrorKind int

const (
	// ErrorKindInput ...
	ErrorKindInput ErrorKind = iota
	// ErrorKindTransaction ...
	ErrorKindTransaction
	// ErrorKindNetwork ...
	ErrorKindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInput:
		return "input"
	case ErrorKindTransaction:
		return "transaction"
	case ErrorKindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

var (
	// ErrNoUtxoFound ...
	ErrNoUtxoFound = errors.New("no utxo found for the swap address")
	// ErrUtxoSecretsNotRevealed ...
	ErrUtxoSecretsNotRevealed = errors.New(
		"utxo secrets are not revealed, the utxo must be located and unblinded",
	)
	// ErrFeeExceedsValue ...
	ErrFeeExceedsValue = errors.New("fee must not exceed the utxo value")
	// ErrRefundNotSupported ...
	ErrRefundNotSupported = errors.New(
		"refund transaction signing is not supported yet",
	)
	// ErrNullPreimage ...
	ErrNullPreimage = errors.New("preimage must not be null")
	// ErrNullBlindingKey ...
	ErrNullBlindingKey = errors.New("blinding key must not be null")
	// ErrNullExplorer ...
	ErrNullExplorer = errors.New("explorer service must not be null")
	// ErrNullSwapScript ...
	ErrNullSwapScript = errors.New("swap script must not be null")
	// ErrUnblindFailed ...
	ErrUnblindFailed = errors.New(
		"the blinding key does not reveal the utxo secrets",
	)
	// ErrUtxoValueMismatch ...
	ErrUtxoValueMismatch = errors.New(
		"utxo value does not match the expected amount",
	)
	// ErrIncompleteScript ...
	ErrIncompleteScript = errors.New(
		"redeem script does not have the expected swap layout",
	)
)

// Error is the error type returned by all exported operations of the package.
type Error struct {
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// NewError wraps the cause with the given kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, err: err}
}

func inputError(format string, args ...interface{}) *Error {
	return NewError(ErrorKindInput, fmt.Errorf(format, args...))
}

func transactionError(err error) *Error {
	return NewError(ErrorKindTransaction, err)
}

func networkError(err error) *Error {
	return NewError(ErrorKindNetwork, err)
}

// IsKind reports whether err is a swap Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	swapErr := &Error{}
	return errors.As(err, &swapErr) && swapErr.Kind == kind
}
