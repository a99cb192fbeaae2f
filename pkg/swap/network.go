package swap

import (
	"errors"

	"github.com/tdex-network/liquidswap/pkg/explorer"
	"github.com/tdex-network/liquidswap/pkg/explorer/electrum"
	"github.com/tdex-network/liquidswap/pkg/explorer/esplora"
	"github.com/vulpemventures/go-elements/network"
)

// Network selects the chain the swap lives on.
type Network int

const (
	// NetworkLiquid ...
	NetworkLiquid Network = iota
	// NetworkTestnet ...
	NetworkTestnet
	// NetworkRegtest ...
	NetworkRegtest
)

func (n Network) String() string {
	switch n {
	case NetworkLiquid:
		return "liquid"
	case NetworkTestnet:
		return "testnet"
	case NetworkRegtest:
		return "regtest"
	default:
		return "unknown"
	}
}

// Params returns the chain parameters (address prefixes, policy asset) of the
// selected network.
func (n Network) Params() *network.Network {
	switch n {
	case NetworkLiquid:
		return &network.Liquid
	case NetworkRegtest:
		return &network.Regtest
	default:
		return &network.Testnet
	}
}

// NetworkConfig gathers the endpoint of the chain-query service for a
// network. There is no process-wide default, callers build their own config
// and hand the resulting service to the swap transactions explicitly.
type NetworkConfig struct {
	Network Network
	// EsploraURL is the base URL of an esplora-like HTTP API.
	EsploraURL string
	// ElectrumAddr is the host:port of an electrum server. When set it takes
	// precedence over EsploraURL.
	ElectrumAddr string
	// ElectrumTLS dials the electrum server over TLS.
	ElectrumTLS bool
}

// NewExplorerService returns the chain-query service for the config.
func (c NetworkConfig) NewExplorerService() (explorer.Service, error) {
	if c.ElectrumAddr != "" {
		return electrum.NewService(c.ElectrumAddr, c.ElectrumTLS)
	}
	if c.EsploraURL != "" {
		return esplora.NewService(c.EsploraURL)
	}
	return nil, errors.New("missing explorer endpoint")
}
