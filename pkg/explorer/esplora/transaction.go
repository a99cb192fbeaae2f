package esplora

import (
	"encoding/json"
	"fmt"
)

func (e *esplora) GetTransactionHex(txid string) (string, error) {
	url := fmt.Sprintf("%s/tx/%s/hex", e.apiURL, txid)
	return e.doRequest("GET", url, "", nil)
}

func (e *esplora) BroadcastTransaction(txHex string) (string, error) {
	url := fmt.Sprintf("%s/tx", e.apiURL)
	headers := map[string]string{
		"Content-Type": "text/plain",
	}

	return e.doRequest("POST", url, txHex, headers)
}

func (e *esplora) Faucet(address string) (string, error) {
	url := fmt.Sprintf("%s/faucet", e.apiURL)
	payload := map[string]interface{}{"address": address}
	body, _ := json.Marshal(payload)
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := e.doRequest("POST", url, string(body), headers)
	if err != nil {
		return "", err
	}

	var rr map[string]string
	if err := json.Unmarshal([]byte(resp), &rr); err != nil {
		return "", err
	}

	return rr["txId"], nil
}
