package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/address"
)

func TestReverseSwapAddress(t *testing.T) {
	script, err := ParseReverseSwapScript(
		NetworkTestnet, testRedeemScript, testBlindingKey,
	)
	require.NoError(t, err)

	addr, err := script.Address()
	require.NoError(t, err)
	assert.Equal(
		t,
		"tlq1qq0gnj2my5tp8r77srvvdmwfrtr8va9mgz9e8ja0rzk75jvsanjvgz5sfvl0"+
			"93l5a7xztrtzhyhfmfyr2exdxtpw7cehfgtzgn62zdzcsgrz8c4pjfvtj",
		addr,
	)
}

func TestOutputScriptMatchesAddress(t *testing.T) {
	script, err := ParseReverseSwapScript(
		NetworkTestnet, testRedeemScript, testBlindingKey,
	)
	require.NoError(t, err)

	addr, err := script.Address()
	require.NoError(t, err)
	expected, err := address.ToOutputScript(addr)
	require.NoError(t, err)

	outputScript, err := script.OutputScript()
	require.NoError(t, err)
	assert.Equal(t, expected, outputScript)
}

func TestSubmarineAddressIsNested(t *testing.T) {
	script := testSwapScript(t, Submarine)

	addr, err := script.Address()
	require.NoError(t, err)

	// nested segwit, so a base58 confidential address with a p2sh script
	outputScript, err := address.ToOutputScript(addr)
	require.NoError(t, err)
	require.Len(t, outputScript, 23)
	assert.Equal(t, byte(0xa9), outputScript[0]) // OP_HASH160
	assert.Equal(t, byte(0x87), outputScript[22]) // OP_EQUAL
}
