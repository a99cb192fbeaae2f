package swap

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

// SwapDirection tells which of the two HTLC layouts a swap script uses.
type SwapDirection int

const (
	// Submarine is a chain-to-lightning swap, the script pays the receiver
	// on the preimage branch and refunds the sender after the timelock.
	Submarine SwapDirection = iota
	// ReverseSubmarine is a lightning-to-chain swap, the script additionally
	// pins the preimage size to 32 bytes.
	ReverseSubmarine
)

func (d SwapDirection) String() string {
	if d == Submarine {
		return "submarine"
	}
	return "reverse submarine"
}

// SwapScript is the decoded form of a swap redeem script along with the
// network it lives on and the blinding key pair of its confidential address.
type SwapScript struct {
	Direction      SwapDirection
	Network        Network
	Hashlock       string // hash160 of the preimage, 20 bytes hex
	ReceiverPubKey string // compressed pubkey of the claiming side, hex
	SenderPubKey   string // compressed pubkey of the refunding side, hex
	Timelock       uint32
	BlindingKey    *btcec.PrivateKey
}

// NewSwapScriptOpts is the struct given to NewSwapScript.
type NewSwapScriptOpts struct {
	Direction      SwapDirection
	Network        Network
	Hashlock       string
	ReceiverPubKey string
	SenderPubKey   string
	Timelock       uint32
	BlindingKey    string // private key, 32 bytes hex
}

func (o NewSwapScriptOpts) validate() error {
	hashlock, err := hex.DecodeString(o.Hashlock)
	if err != nil || len(hashlock) != 20 {
		return inputError("hashlock must be the 20 byte preimage hash in hex")
	}
	if _, err := parsePubKeyHex(o.ReceiverPubKey); err != nil {
		return inputError("invalid receiver pubkey: %v", err)
	}
	if _, err := parsePubKeyHex(o.SenderPubKey); err != nil {
		return inputError("invalid sender pubkey: %v", err)
	}
	if len(o.BlindingKey) <= 0 {
		return NewError(ErrorKindInput, ErrNullBlindingKey)
	}
	return nil
}

// NewSwapScript returns a SwapScript from its explicit fields.
func NewSwapScript(opts NewSwapScriptOpts) (*SwapScript, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	blindingKey, err := parsePrivKeyHex(opts.BlindingKey)
	if err != nil {
		return nil, inputError("invalid blinding key: %v", err)
	}

	return &SwapScript{
		Direction:      opts.Direction,
		Network:        opts.Network,
		Hashlock:       opts.Hashlock,
		ReceiverPubKey: opts.ReceiverPubKey,
		SenderPubKey:   opts.SenderPubKey,
		Timelock:       opts.Timelock,
		BlindingKey:    blindingKey,
	}, nil
}

// ParseSubmarineScript decodes a submarine redeem script.
func ParseSubmarineScript(
	net Network, redeemScriptHex, blindingKeyHex string,
) (*SwapScript, error) {
	return parseSwapScript(Submarine, net, redeemScriptHex, blindingKeyHex)
}

// ParseReverseSwapScript decodes a reverse submarine redeem script.
func ParseReverseSwapScript(
	net Network, redeemScriptHex, blindingKeyHex string,
) (*SwapScript, error) {
	return parseSwapScript(ReverseSubmarine, net, redeemScriptHex, blindingKeyHex)
}

func parseSwapScript(
	direction SwapDirection, net Network, redeemScriptHex, blindingKeyHex string,
) (*SwapScript, error) {
	script, err := hex.DecodeString(redeemScriptHex)
	if err != nil {
		return nil, inputError("invalid redeem script hex: %v", err)
	}
	blindingKey, err := parsePrivKeyHex(blindingKeyHex)
	if err != nil {
		return nil, inputError("invalid blinding key: %v", err)
	}

	scanner := &scriptScanner{direction: direction}
	if err := scanner.scan(script); err != nil {
		return nil, err
	}
	fields, err := scanner.fields()
	if err != nil {
		return nil, err
	}

	return &SwapScript{
		Direction:      direction,
		Network:        net,
		Hashlock:       hex.EncodeToString(fields.hashlock),
		ReceiverPubKey: hex.EncodeToString(fields.receiverKey),
		SenderPubKey:   hex.EncodeToString(fields.senderKey),
		Timelock:       scriptNumFromBytes(fields.timelock),
		BlindingKey:    blindingKey,
	}, nil
}

// RedeemScript encodes the script back to its canonical byte form.
func (s *SwapScript) RedeemScript() ([]byte, error) {
	hashlock, err := hex.DecodeString(s.Hashlock)
	if err != nil {
		return nil, inputError("invalid hashlock hex: %v", err)
	}
	receiverKey, err := hex.DecodeString(s.ReceiverPubKey)
	if err != nil {
		return nil, inputError("invalid receiver pubkey hex: %v", err)
	}
	senderKey, err := hex.DecodeString(s.SenderPubKey)
	if err != nil {
		return nil, inputError("invalid sender pubkey hex: %v", err)
	}

	builder := txscript.NewScriptBuilder()
	switch s.Direction {
	case Submarine:
		builder.
			AddOp(txscript.OP_HASH160).AddData(hashlock).
			AddOp(txscript.OP_EQUAL).
			AddOp(txscript.OP_IF).
			AddData(receiverKey).
			AddOp(txscript.OP_ELSE).
			AddInt64(int64(s.Timelock)).
			AddOp(txscript.OP_CHECKLOCKTIMEVERIFY).AddOp(txscript.OP_DROP).
			AddData(senderKey).
			AddOp(txscript.OP_ENDIF).
			AddOp(txscript.OP_CHECKSIG)
	default:
		builder.
			AddOp(txscript.OP_SIZE).AddData([]byte{0x20}).
			AddOp(txscript.OP_EQUAL).
			AddOp(txscript.OP_IF).
			AddOp(txscript.OP_HASH160).AddData(hashlock).
			AddOp(txscript.OP_EQUALVERIFY).
			AddData(receiverKey).
			AddOp(txscript.OP_ELSE).
			AddOp(txscript.OP_DROP).
			AddInt64(int64(s.Timelock)).
			AddOp(txscript.OP_CHECKLOCKTIMEVERIFY).AddOp(txscript.OP_DROP).
			AddData(senderKey).
			AddOp(txscript.OP_ENDIF).
			AddOp(txscript.OP_CHECKSIG)
	}

	script, err := builder.Script()
	if err != nil {
		return nil, inputError("encode redeem script: %v", err)
	}
	return script, nil
}

/**** SCRIPT SCANNER ****/

// scriptScanner folds over the instructions of a redeem script and assigns
// every data push to a swap field based on the last seen non-push opcode.
type scriptScanner struct {
	direction SwapDirection

	lastOp      byte
	hashlock    []byte
	receiverKey []byte
	senderKey   []byte
	timelock    []byte
}

type scriptFields struct {
	hashlock    []byte
	receiverKey []byte
	senderKey   []byte
	timelock    []byte
}

func (s *scriptScanner) scan(script []byte) error {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if data := tokenizer.Data(); len(data) > 0 {
			s.scanPush(data)
			continue
		}
		s.lastOp = tokenizer.Opcode()
	}
	if err := tokenizer.Err(); err != nil {
		return inputError("malformed redeem script: %v", err)
	}
	return nil
}

func (s *scriptScanner) scanPush(data []byte) {
	switch s.direction {
	case Submarine:
		switch s.lastOp {
		case txscript.OP_HASH160:
			s.hashlock = data
		case txscript.OP_IF:
			s.receiverKey = data
		case txscript.OP_ELSE:
			s.timelock = data
		case txscript.OP_DROP:
			s.senderKey = data
		}
	default:
		switch s.lastOp {
		case txscript.OP_HASH160:
			s.hashlock = data
		case txscript.OP_EQUALVERIFY:
			s.receiverKey = data
		case txscript.OP_DROP:
			// both the timelock and the sender key follow an OP_DROP on this
			// layout; the timelock is the only push serializing to 3 bytes
			if len(data) == 3 {
				s.timelock = data
			} else {
				s.senderKey = data
			}
		}
	}
}

func (s *scriptScanner) fields() (*scriptFields, error) {
	if len(s.hashlock) != 20 ||
		len(s.receiverKey) <= 0 || len(s.senderKey) <= 0 ||
		len(s.timelock) <= 0 {
		return nil, NewError(ErrorKindInput, ErrIncompleteScript)
	}
	if _, err := btcec.ParsePubKey(s.receiverKey); err != nil {
		return nil, inputError("invalid receiver pubkey: %v", err)
	}
	if _, err := btcec.ParsePubKey(s.senderKey); err != nil {
		return nil, inputError("invalid sender pubkey: %v", err)
	}
	return &scriptFields{
		hashlock:    s.hashlock,
		receiverKey: s.receiverKey,
		senderKey:   s.senderKey,
		timelock:    s.timelock,
	}, nil
}

// scriptNumFromBytes decodes a minimally encoded script number in little
// endian byte order, the form CHECKLOCKTIMEVERIFY operands are pushed with.
func scriptNumFromBytes(bytes []byte) uint32 {
	value := uint32(0)
	for i, b := range bytes {
		value |= uint32(b) << (8 * i)
	}
	return value
}

func parsePubKeyHex(str string) (*btcec.PublicKey, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(bytes)
}

func parsePrivKeyHex(str string) (*btcec.PrivateKey, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	if len(bytes) != 32 {
		return nil, ErrNullBlindingKey
	}
	privKey, _ := btcec.PrivKeyFromBytes(bytes)
	return privKey, nil
}
