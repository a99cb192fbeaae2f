package swap

import (
	"github.com/vulpemventures/go-elements/address"
	"github.com/vulpemventures/go-elements/payment"
)

// Address derives the confidential funding address of the swap script:
// nested p2sh-p2wsh for submarine swaps, native p2wsh for reverse ones, both
// blinded with the script's blinding public key.
func (s *SwapScript) Address() (string, error) {
	script, err := s.RedeemScript()
	if err != nil {
		return "", err
	}

	p2wsh, err := payment.FromPayment(&payment.Payment{
		Network:     s.Network.Params(),
		BlindingKey: s.BlindingKey.PubKey(),
		Script:      script,
	})
	if err != nil {
		return "", inputError("invalid payment: %v", err)
	}

	if s.Direction == ReverseSubmarine {
		addr, err := p2wsh.ConfidentialWitnessScriptHash()
		if err != nil {
			return "", inputError("derive address: %v", err)
		}
		return addr, nil
	}

	p2sh, err := payment.FromPayment(p2wsh)
	if err != nil {
		return "", inputError("invalid payment: %v", err)
	}
	addr, err := p2sh.ConfidentialScriptHash()
	if err != nil {
		return "", inputError("derive address: %v", err)
	}
	return addr, nil
}

// OutputScript returns the locking script of the funding address, the one
// the swap utxo is searched by.
func (s *SwapScript) OutputScript() ([]byte, error) {
	addr, err := s.Address()
	if err != nil {
		return nil, err
	}
	script, err := address.ToOutputScript(addr)
	if err != nil {
		return nil, inputError("derive output script: %v", err)
	}
	return script, nil
}
