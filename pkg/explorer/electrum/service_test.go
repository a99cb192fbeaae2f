package electrum

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptHash(t *testing.T) {
	// sha256 of the empty script is
	// e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855,
	// electrum identifies scripts by its reversed form
	assert.Equal(
		t,
		"55b852781b9995a44c939b64e441ae2724b96f99c8f4fb9a141cfc9842c4b0e3",
		scriptHash([]byte{}),
	)

	script, _ := hex.DecodeString(
		"00140000000000000000000000000000000000000000",
	)
	hash := scriptHash(script)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, scriptHash([]byte{}), hash)
}
