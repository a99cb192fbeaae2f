package swap

import (
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReverseSwapOnRegtest runs the whole claim flow against a local nigiri
// box: fund the swap address through the faucet, locate and unblind the
// utxo, sign the claim and broadcast it.
func TestReverseSwapOnRegtest(t *testing.T) {
	if os.Getenv("SWAP_E2E") != "1" {
		t.Skip("set SWAP_E2E=1 with nigiri running to exercise the regtest flow")
	}

	explorerSvc, err := NetworkConfig{
		Network:    NetworkRegtest,
		EsploraURL: "http://localhost:3001",
	}.NewExplorerService()
	require.NoError(t, err)

	preimageBytes := make([]byte, 32)
	copy(preimageBytes, []byte("super secret preimage for tests!"))
	preimage := NewPreimage(preimageBytes)

	receiverKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	senderKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	blindingKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	height, err := explorerSvc.GetBlockHeight()
	require.NoError(t, err)

	script, err := NewSwapScript(NewSwapScriptOpts{
		Direction: ReverseSubmarine,
		Network:   NetworkRegtest,
		Hashlock:  preimage.HashHex(),
		ReceiverPubKey: hex.EncodeToString(
			receiverKey.PubKey().SerializeCompressed(),
		),
		SenderPubKey: hex.EncodeToString(
			senderKey.PubKey().SerializeCompressed(),
		),
		Timelock:    uint32(height + 60),
		BlindingKey: hex.EncodeToString(blindingKey.Serialize()),
	})
	require.NoError(t, err)

	addr, err := script.Address()
	require.NoError(t, err)

	_, err = explorerSvc.Faucet(addr)
	require.NoError(t, err)
	time.Sleep(5 * time.Second)

	claim, err := NewClaimTransaction(
		script, testDestinationAddress(t), 500, explorerSvc,
	)
	require.NoError(t, err)

	utxo, err := claim.Locate()
	require.NoError(t, err)
	require.NotNil(t, utxo)
	require.NoError(t, claim.CheckUtxoValue(utxo.Value))

	signed, err := claim.Drain(receiverKey, preimage)
	require.NoError(t, err)
	require.Len(t, signed.Inputs[0].Witness, 4)

	txid, err := claim.Broadcast(signed)
	require.NoError(t, err)
	assert.NotEmpty(t, txid)
}
