package verify

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Swagman-cyber/hell/config"
)

// Generator - Produces verification codes and their ledger verifiers
type Generator struct {
	// Secret keys the verifier hash. Empty means the ledger stores the
	// raw code, which is the baseline behavior.
	Secret []byte
}

// NewCode - Generate a short uppercase alphanumeric code
func (g *Generator) NewCode() (string, error) {
	buf := make([]byte, config.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = config.CodeAlphabet[int(b)%len(config.CodeAlphabet)]
	}
	return string(buf), nil
}

// Verifier - Derive the value the ledger stores for a confirmed code. With a
// secret set this binds the code to the (requester, account) pair, so a code
// that was never issued to them cannot be pre-burned or replayed.
func (g *Generator) Verifier(requesterID string, robloxID int64, code string) string {
	if len(g.Secret) == 0 {
		return code
	}
	mac := hmac.New(sha256.New, g.Secret)
	fmt.Fprintf(mac, "%s|%d|%s", requesterID, robloxID, code)
	return hex.EncodeToString(mac.Sum(nil))
}
