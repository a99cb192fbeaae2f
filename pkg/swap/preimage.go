package swap

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
)

// Preimage is the hashlock secret of a swap. The zero value is the absent
// preimage, valid only for refund transactions.
type Preimage struct {
	bytes []byte
}

// NewPreimage wraps raw preimage bytes.
func NewPreimage(bytes []byte) Preimage {
	return Preimage{bytes: bytes}
}

// NewPreimageFromHex parses a hex encoded preimage.
func NewPreimageFromHex(str string) (Preimage, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return Preimage{}, inputError("invalid preimage hex: %v", err)
	}
	return Preimage{bytes: bytes}, nil
}

// IsZero returns whether the preimage is absent.
func (p Preimage) IsZero() bool {
	return len(p.bytes) <= 0
}

// Bytes returns the raw preimage.
func (p Preimage) Bytes() []byte {
	return p.bytes
}

// Hash160 returns ripemd160(sha256(preimage)), the hashlock committed into
// the swap script.
func (p Preimage) Hash160() []byte {
	return btcutil.Hash160(p.bytes)
}

// HashHex returns the hex encoded hashlock.
func (p Preimage) HashHex() string {
	return hex.EncodeToString(p.Hash160())
}
