package esplora

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/liquidswap/pkg/circuitbreaker"
	"github.com/tdex-network/liquidswap/pkg/explorer"
	"github.com/tdex-network/liquidswap/pkg/httputil"
)

type esplora struct {
	apiURL string
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new esplora service as an explorer.Service interface
func NewService(apiURL string) (explorer.Service, error) {
	service := &esplora{apiURL, circuitbreaker.NewCircuitBreaker()}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *esplora) healthCheck() error {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	_, err := e.doRequest("GET", url, "", nil)
	return err
}

func (e *esplora) GetBlockHeight() (int, error) {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp)
}

func (e *esplora) GetScriptHistory(script []byte) ([]explorer.TxHistory, error) {
	scriptHash := sha256.Sum256(script)
	url := fmt.Sprintf(
		"%s/scripthash/%s/txs", e.apiURL, hex.EncodeToString(scriptHash[:]),
	)
	resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return nil, err
	}

	return parseTxHistory(resp)
}

// doRequest performs the http call behind the circuit breaker. A non-200
// response is a failure carrying the response body verbatim.
func (e *esplora) doRequest(
	method, url, body string, headers map[string]string,
) (string, error) {
	resp, err := e.cb.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest(method, url, body, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(resp)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}
