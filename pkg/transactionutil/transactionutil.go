package transactionutil

import (
	"encoding/hex"

	"github.com/tdex-network/liquidswap/pkg/bufferutil"
	"github.com/vulpemventures/go-elements/confidential"
	"github.com/vulpemventures/go-elements/elementsutil"
	"github.com/vulpemventures/go-elements/transaction"
)

// UnblindedResult holds the full secrets of an unblinded output. The blinders
// are needed back when the output is spent in a confidential transaction,
// where they enter the balance proof of the new outputs.
type UnblindedResult struct {
	AssetHash    string
	Value        uint64
	AssetBlinder []byte
	ValueBlinder []byte
}

// UnblindOutput reveals the secrets of a confidential output with the given
// blinding private key. Unconfidential outputs are returned as they are, with
// zero blinders.
func UnblindOutput(
	utxo *transaction.TxOutput,
	blindKey []byte,
) (*UnblindedResult, bool) {
	if len(utxo.RangeProof) <= 0 {
		value, err := elementsutil.ValueFromBytes(utxo.Value)
		if err != nil {
			return nil, false
		}
		return &UnblindedResult{
			AssetHash:    bufferutil.AssetHashFromBytes(utxo.Asset),
			Value:        value,
			AssetBlinder: make([]byte, 32),
			ValueBlinder: make([]byte, 32),
		}, true
	}

	revealed, err := confidential.UnblindOutputWithKey(utxo, blindKey)
	if err != nil {
		return nil, false
	}

	return &UnblindedResult{
		AssetHash:    hex.EncodeToString(elementsutil.ReverseBytes(revealed.Asset)),
		Value:        revealed.Value,
		AssetBlinder: revealed.AssetBlindingFactor,
		ValueBlinder: revealed.ValueBlindingFactor,
	}, true
}
