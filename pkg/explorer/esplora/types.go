package esplora

import (
	"encoding/json"
	"fmt"

	"github.com/tdex-network/liquidswap/pkg/explorer"
)

/**** SCRIPT HISTORY ****/

type txHistory struct {
	Txid   string   `json:"txid"`
	Status txStatus `json:"status"`
}

type txStatus struct {
	Confirmed   bool `json:"confirmed"`
	BlockHeight int  `json:"block_height"`
}

func parseTxHistory(historyJSON string) ([]explorer.TxHistory, error) {
	entries := make([]txHistory, 0)
	if err := json.Unmarshal([]byte(historyJSON), &entries); err != nil {
		return nil, fmt.Errorf("invalid history JSON")
	}

	history := make([]explorer.TxHistory, 0, len(entries))
	for _, e := range entries {
		history = append(history, explorer.TxHistory{
			TxID:        e.Txid,
			BlockHeight: e.Status.BlockHeight,
		})
	}
	return history, nil
}
