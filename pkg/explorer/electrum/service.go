package electrum

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tdex-network/liquidswap/pkg/explorer"
	"github.com/vulpemventures/go-elements/elementsutil"
)

var (
	// ErrFaucetNotSupported ...
	ErrFaucetNotSupported = errors.New(
		"faucet is not available on the electrum interface",
	)
)

type service struct {
	addr    string
	useTLS  bool
	timeout time.Duration

	mtx    sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	reqID  uint64
}

// NewService returns a new electrum service as an explorer.Service interface.
// The connection is established eagerly so that a bad endpoint fails fast.
func NewService(addr string, useTLS bool) (explorer.Service, error) {
	s := &service{addr: addr, useTLS: useTLS, timeout: 10 * time.Second}

	if _, err := s.GetBlockHeight(); err != nil {
		s.mtx.Lock()
		s.disconnect()
		s.mtx.Unlock()
		return nil, fmt.Errorf("health check: %w", err)
	}

	return s, nil
}

func (s *service) GetScriptHistory(script []byte) ([]explorer.TxHistory, error) {
	result, err := s.call("blockchain.scripthash.get_history", scriptHash(script))
	if err != nil {
		return nil, err
	}

	entries := make([]struct {
		TxHash string `json:"tx_hash"`
		Height int    `json:"height"`
	}, 0)
	if err := json.Unmarshal(result, &entries); err != nil {
		return nil, fmt.Errorf("invalid history: %w", err)
	}

	history := make([]explorer.TxHistory, 0, len(entries))
	for _, e := range entries {
		history = append(history, explorer.TxHistory{
			TxID:        e.TxHash,
			BlockHeight: e.Height,
		})
	}
	return history, nil
}

func (s *service) GetTransactionHex(txid string) (string, error) {
	result, err := s.call("blockchain.transaction.get", txid)
	if err != nil {
		return "", err
	}

	txHex := ""
	if err := json.Unmarshal(result, &txHex); err != nil {
		return "", fmt.Errorf("invalid transaction: %w", err)
	}
	return txHex, nil
}

func (s *service) BroadcastTransaction(txHex string) (string, error) {
	result, err := s.call("blockchain.transaction.broadcast", txHex)
	if err != nil {
		return "", err
	}

	txid := ""
	if err := json.Unmarshal(result, &txid); err != nil {
		return "", fmt.Errorf("invalid txid: %w", err)
	}
	return txid, nil
}

func (s *service) GetBlockHeight() (int, error) {
	result, err := s.call("blockchain.headers.subscribe")
	if err != nil {
		return 0, err
	}

	header := struct {
		Height int `json:"height"`
	}{}
	if err := json.Unmarshal(result, &header); err != nil {
		return 0, fmt.Errorf("invalid header: %w", err)
	}
	return header.Height, nil
}

func (s *service) Faucet(_ string) (string, error) {
	return "", ErrFaucetNotSupported
}

// scriptHash returns the electrum identifier of a locking script, the
// sha256 of the script in reversed byte order, hex encoded.
func scriptHash(script []byte) string {
	hash := sha256.Sum256(script)
	return hex.EncodeToString(elementsutil.ReverseBytes(hash[:]))
}
