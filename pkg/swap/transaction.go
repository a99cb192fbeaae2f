package swap

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/liquidswap/pkg/bufferutil"
	"github.com/tdex-network/liquidswap/pkg/explorer"
	"github.com/tdex-network/liquidswap/pkg/transactionutil"
	"github.com/vulpemventures/go-elements/address"
	"github.com/vulpemventures/go-elements/confidential"
	"github.com/vulpemventures/go-elements/transaction"
)

// SwapTxKind tells whether the swap transaction spends the hash branch or
// the timelocked branch of the script.
type SwapTxKind int

const (
	// Claim ...
	Claim SwapTxKind = iota
	// Refund ...
	Refund
)

func (k SwapTxKind) String() string {
	if k == Claim {
		return "claim"
	}
	return "refund"
}

// Utxo is the funding output of a swap. The blinders and the value
// commitment are set only for utxos located on chain and unblinded with the
// script's blinding key; a manually injected outpoint carries none of them.
type Utxo struct {
	TxID            string
	VOut            uint32
	Value           uint64
	AssetHash       string
	AssetBlinder    []byte
	ValueBlinder    []byte
	ValueCommitment []byte
}

func (u *Utxo) isRevealed() bool {
	return len(u.AssetBlinder) > 0 && len(u.ValueBlinder) > 0 &&
		len(u.ValueCommitment) > 0
}

// SwapTransaction drains the funding utxo of a swap script to a destination
// address, going through locate, sign and broadcast.
type SwapTransaction struct {
	kind            SwapTxKind
	script          *SwapScript
	destScript      []byte
	destBlindingKey []byte
	fee             uint64
	explorerSvc     explorer.Service
	snapshotDir     string

	utxo *Utxo
}

// NewSwapTransactionOpts is the struct given to NewSwapTransaction.
type NewSwapTransactionOpts struct {
	Kind               SwapTxKind
	Script             *SwapScript
	DestinationAddress string
	// AbsoluteFee is the network fee in satoshi, deducted from the utxo value.
	AbsoluteFee uint64
	Explorer    explorer.Service
	// SnapshotDir optionally enables dumping the located funding transaction
	// and the finalized swap transaction to files for troubleshooting.
	SnapshotDir string
}

func (o NewSwapTransactionOpts) validate() error {
	if o.Script == nil {
		return NewError(ErrorKindInput, ErrNullSwapScript)
	}
	if o.Script.BlindingKey == nil {
		return NewError(ErrorKindInput, ErrNullBlindingKey)
	}
	if o.Explorer == nil {
		return NewError(ErrorKindInput, ErrNullExplorer)
	}
	if _, err := address.FromConfidential(o.DestinationAddress); err != nil {
		return inputError("invalid destination address: %v", err)
	}
	return nil
}

// NewSwapTransaction returns a swap transaction in its initial state, with
// no utxo located yet.
func NewSwapTransaction(opts NewSwapTransactionOpts) (*SwapTransaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	destScript, err := address.ToOutputScript(opts.DestinationAddress)
	if err != nil {
		return nil, inputError("invalid destination address: %v", err)
	}
	ctAddr, _ := address.FromConfidential(opts.DestinationAddress)

	return &SwapTransaction{
		kind:            opts.Kind,
		script:          opts.Script,
		destScript:      destScript,
		destBlindingKey: ctAddr.BlindingKey,
		fee:             opts.AbsoluteFee,
		explorerSvc:     opts.Explorer,
		snapshotDir:     opts.SnapshotDir,
	}, nil
}

// NewClaimTransaction returns a swap transaction spending the hash branch.
func NewClaimTransaction(
	script *SwapScript, destinationAddress string, absoluteFee uint64,
	explorerSvc explorer.Service,
) (*SwapTransaction, error) {
	return NewSwapTransaction(NewSwapTransactionOpts{
		Kind:               Claim,
		Script:             script,
		DestinationAddress: destinationAddress,
		AbsoluteFee:        absoluteFee,
		Explorer:           explorerSvc,
	})
}

// NewRefundTransaction returns a swap transaction spending the timelocked
// branch.
func NewRefundTransaction(
	script *SwapScript, destinationAddress string, absoluteFee uint64,
	explorerSvc explorer.Service,
) (*SwapTransaction, error) {
	return NewSwapTransaction(NewSwapTransactionOpts{
		Kind:               Refund,
		Script:             script,
		DestinationAddress: destinationAddress,
		AbsoluteFee:        absoluteFee,
		Explorer:           explorerSvc,
	})
}

// Utxo returns the funding utxo, nil if none has been located or injected.
func (t *SwapTransaction) Utxo() *Utxo {
	return t.utxo
}

// WithUtxo injects the funding outpoint manually, for flows where the caller
// already knows it. The injected utxo misses the blinders revealed by
// locating, so it's not enough to sign a claim.
func (t *SwapTransaction) WithUtxo(txid string, vout uint32, value uint64) {
	t.utxo = &Utxo{TxID: txid, VOut: vout, Value: value}
}

// Locate searches the funding utxo of the swap script, looking at the first
// transaction of the history of its address and unblinding the output paying
// to it. It returns nil without error if the address has no history yet.
// Every call starts from scratch, overwriting any previous result.
func (t *SwapTransaction) Locate() (*Utxo, error) {
	t.utxo = nil

	script, err := t.script.OutputScript()
	if err != nil {
		return nil, err
	}

	history, err := t.explorerSvc.GetScriptHistory(script)
	if err != nil {
		return nil, networkError(fmt.Errorf("fetch history: %w", err))
	}
	if len(history) <= 0 {
		return nil, nil
	}

	txHex, err := t.explorerSvc.GetTransactionHex(history[0].TxID)
	if err != nil {
		return nil, networkError(fmt.Errorf("fetch transaction: %w", err))
	}
	tx, err := transaction.NewTxFromHex(txHex)
	if err != nil {
		return nil, networkError(fmt.Errorf("parse transaction: %w", err))
	}

	t.writeSnapshot("funding", history[0].TxID, txHex)

	for vout, out := range tx.Outputs {
		if !bytes.Equal(out.Script, script) {
			continue
		}

		unblinded, ok := transactionutil.UnblindOutput(
			out, t.script.BlindingKey.Serialize(),
		)
		if !ok {
			return nil, NewError(ErrorKindInput, ErrUnblindFailed)
		}

		t.utxo = &Utxo{
			TxID:            tx.TxHash().String(),
			VOut:            uint32(vout),
			Value:           unblinded.Value,
			AssetHash:       unblinded.AssetHash,
			AssetBlinder:    unblinded.AssetBlinder,
			ValueBlinder:    unblinded.ValueBlinder,
			ValueCommitment: out.Value,
		}
		log.WithFields(log.Fields{
			"txid":  t.utxo.TxID,
			"vout":  t.utxo.VOut,
			"value": t.utxo.Value,
		}).Debug("located swap utxo")
		break
	}

	return t.utxo, nil
}

// CheckUtxoValue verifies that the located utxo holds exactly the expected
// amount.
func (t *SwapTransaction) CheckUtxoValue(expected uint64) error {
	if t.utxo == nil {
		if _, err := t.Locate(); err != nil {
			return err
		}
	}
	if t.utxo == nil {
		return transactionError(ErrNoUtxoFound)
	}
	if t.utxo.Value != expected {
		return transactionError(fmt.Errorf(
			"%w: expected %d, found %d",
			ErrUtxoValueMismatch, expected, t.utxo.Value,
		))
	}
	return nil
}

// Drain locates the funding utxo, unless already known, and spends it
// entirely, minus the fee, to the destination address. Claims need the private key of the receiver side
// of the script and the hashlock preimage. Refunds are not supported yet and
// always return a Transaction error.
func (t *SwapTransaction) Drain(
	privateKey *btcec.PrivateKey, preimage Preimage,
) (*transaction.Transaction, error) {
	if t.utxo == nil {
		if _, err := t.Locate(); err != nil {
			return nil, err
		}
	}
	if t.utxo == nil {
		return nil, transactionError(ErrNoUtxoFound)
	}

	if t.kind == Claim {
		return t.signClaim(privateKey, preimage)
	}
	return nil, t.signRefund()
}

// Broadcast publishes the signed transaction and returns its txid.
func (t *SwapTransaction) Broadcast(
	tx *transaction.Transaction,
) (string, error) {
	txHex, err := tx.ToHex()
	if err != nil {
		return "", transactionError(fmt.Errorf("serialize transaction: %w", err))
	}

	txid, err := t.explorerSvc.BroadcastTransaction(txHex)
	if err != nil {
		return "", networkError(fmt.Errorf("broadcast: %w", err))
	}

	log.WithFields(log.Fields{
		"txid": txid,
		"kind": t.kind.String(),
	}).Debug("broadcasted swap transaction")
	return txid, nil
}

func (t *SwapTransaction) signClaim(
	privateKey *btcec.PrivateKey, preimage Preimage,
) (*transaction.Transaction, error) {
	if privateKey == nil {
		return nil, inputError("private key must not be null")
	}
	if preimage.IsZero() {
		return nil, NewError(ErrorKindInput, ErrNullPreimage)
	}
	if !t.utxo.isRevealed() {
		return nil, transactionError(ErrUtxoSecretsNotRevealed)
	}
	if t.fee >= t.utxo.Value {
		return nil, transactionError(fmt.Errorf(
			"%w: fee %d, value %d", ErrFeeExceedsValue, t.fee, t.utxo.Value,
		))
	}
	outputValue := t.utxo.Value - t.fee

	redeemScript, err := t.script.RedeemScript()
	if err != nil {
		return nil, err
	}

	prevTxID, err := bufferutil.TxIDToBytes(t.utxo.TxID)
	if err != nil {
		return nil, transactionError(fmt.Errorf("parse utxo txid: %w", err))
	}
	input := transaction.NewTxInput(prevTxID, t.utxo.VOut)
	input.Sequence = 0xffffffff

	asset, err := bufferutil.AssetHashToBytes(t.utxo.AssetHash)
	if err != nil {
		return nil, transactionError(fmt.Errorf("parse utxo asset: %w", err))
	}
	// asset in internal byte order, without the explicit prefix
	assetTag := asset[1:]

	outAssetBlinder, err := randomBytes(32)
	if err != nil {
		return nil, transactionError(err)
	}
	assetCommitment, err := confidential.AssetCommitment(
		assetTag, outAssetBlinder,
	)
	if err != nil {
		return nil, transactionError(fmt.Errorf("asset commitment: %w", err))
	}

	seed, err := randomBytes(32)
	if err != nil {
		return nil, transactionError(err)
	}
	surjectionProof, ok := confidential.SurjectionProof(
		confidential.SurjectionProofArgs{
			OutputAsset:               assetTag,
			OutputAssetBlindingFactor: outAssetBlinder,
			InputAssets:               [][]byte{assetTag},
			InputAssetBlindingFactors: [][]byte{t.utxo.AssetBlinder},
			Seed:                      seed,
		},
	)
	if !ok {
		return nil, transactionError(
			fmt.Errorf("surjection proof generation failed"),
		)
	}

	// the explicit fee output enters the balance equation with zero blinders,
	// the payment output is the last one and gets the balancing factor
	zeroBlinder := make([]byte, 32)
	finalValueBlinder, err := confidential.FinalValueBlindingFactor(
		confidential.FinalValueBlindingFactorArgs{
			InValues:      []uint64{t.utxo.Value},
			OutValues:     []uint64{t.fee, outputValue},
			InGenerators:  [][]byte{t.utxo.AssetBlinder},
			OutGenerators: [][]byte{zeroBlinder, outAssetBlinder},
			InFactors:     [][]byte{t.utxo.ValueBlinder},
			OutFactors:    [][]byte{zeroBlinder},
		},
	)
	if err != nil {
		return nil, transactionError(
			fmt.Errorf("final value blinding factor: %w", err),
		)
	}

	valueCommitment, err := confidential.ValueCommitment(
		outputValue, assetCommitment, finalValueBlinder[:],
	)
	if err != nil {
		return nil, transactionError(fmt.Errorf("value commitment: %w", err))
	}

	ephemeralKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, transactionError(err)
	}
	nonce, err := confidential.NonceHash(
		t.destBlindingKey, ephemeralKey.Serialize(),
	)
	if err != nil {
		return nil, transactionError(fmt.Errorf("ecdh nonce: %w", err))
	}

	rangeProof, err := confidential.RangeProof(confidential.RangeProofArgs{
		Value:               outputValue,
		Nonce:               nonce,
		Asset:               assetTag,
		AssetBlindingFactor: outAssetBlinder,
		ValueBlindFactor:    finalValueBlinder,
		ValueCommit:         valueCommitment,
		ScriptPubkey:        t.destScript,
		Exp:                 0,
		MinBits:             52,
	})
	if err != nil {
		return nil, transactionError(fmt.Errorf("range proof: %w", err))
	}

	payOutput := transaction.NewTxOutput(
		assetCommitment, valueCommitment, t.destScript,
	)
	payOutput.Nonce = ephemeralKey.PubKey().SerializeCompressed()
	payOutput.RangeProof = rangeProof
	payOutput.SurjectionProof = surjectionProof

	feeValue, err := bufferutil.ValueToBytes(t.fee)
	if err != nil {
		return nil, transactionError(fmt.Errorf("serialize fee: %w", err))
	}
	feeOutput := transaction.NewTxOutput(asset, feeValue, []byte{})

	tx := &transaction.Transaction{
		Version:  2,
		Locktime: t.script.Timelock,
		Inputs:   []*transaction.TxInput{input},
		Outputs:  []*transaction.TxOutput{payOutput, feeOutput},
	}

	sigHash := tx.HashForWitnessV0(
		0, redeemScript, t.utxo.ValueCommitment, txscript.SigHashAll,
	)
	signature := ecdsa.Sign(privateKey, sigHash[:])
	sigWithSigHashType := append(signature.Serialize(), byte(txscript.SigHashAll))

	// the leading empty element drives the script into its hash branch
	input.Witness = transaction.TxWitness{
		[]byte{}, sigWithSigHashType, preimage.Bytes(), redeemScript,
	}

	if txHex, err := tx.ToHex(); err == nil {
		t.writeSnapshot("claim", tx.TxHash().String(), txHex)
	}

	log.WithFields(log.Fields{
		"value":    outputValue,
		"fee":      t.fee,
		"locktime": tx.Locktime,
	}).Debug("signed claim transaction")
	return tx, nil
}

func (t *SwapTransaction) signRefund() error {
	return transactionError(ErrRefundNotSupported)
}

// writeSnapshot dumps a transaction to <dir>/<name>.txt when the snapshot
// dir is set. Failures are logged and swallowed.
func (t *SwapTransaction) writeSnapshot(name, txid, txHex string) {
	if len(t.snapshotDir) <= 0 {
		return
	}
	content := fmt.Sprintf("txid: %s\nhex: %s\n", txid, txHex)
	path := filepath.Join(t.snapshotDir, fmt.Sprintf("%s.txt", name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.WithError(err).Warnf("failed to write %s snapshot", name)
	}
}

func randomBytes(n int) ([]byte, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}
