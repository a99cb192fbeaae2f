package explorer

// TxHistory is an entry of the transaction history of a locking script, ie. a
// transaction paying to or spending from the script, as returned by esplora's
// /scripthash/:hash/txs and electrum's blockchain.scripthash.get_history.
type TxHistory struct {
	TxID        string
	BlockHeight int
}

// Service is the interface of the chain-query service consumed by the swap
// package. Both the esplora (HTTP) and electrum (TCP JSON-RPC) packages
// implement it.
type Service interface {
	GetScriptHistory(script []byte) ([]TxHistory, error)
	GetTransactionHex(txid string) (string, error)
	BroadcastTransaction(txHex string) (string, error)
	GetBlockHeight() (int, error)

	/**** REGTEST ONLY ****/
	Faucet(address string) (string, error)
}
