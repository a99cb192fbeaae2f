package swap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := NewError(ErrorKindTransaction, ErrNoUtxoFound)

	assert.True(t, IsKind(err, ErrorKindTransaction))
	assert.False(t, IsKind(err, ErrorKindInput))
	assert.True(t, errors.Is(err, ErrNoUtxoFound))
	assert.Equal(t, "transaction: no utxo found for the swap address", err.Error())
}

func TestWrappedSentinel(t *testing.T) {
	err := transactionError(fmt.Errorf(
		"%w: expected %d, found %d", ErrUtxoValueMismatch, 100, 42,
	))

	assert.True(t, errors.Is(err, ErrUtxoValueMismatch))
	assert.True(t, IsKind(err, ErrorKindTransaction))
}

func TestIsKindOnForeignError(t *testing.T) {
	assert.False(t, IsKind(errors.New("boom"), ErrorKindNetwork))
	assert.False(t, IsKind(nil, ErrorKindNetwork))
}
