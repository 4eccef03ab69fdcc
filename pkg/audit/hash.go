package audit

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize caps how many bytes of a prompt are hashed.
const MaxHashSize = 1 << 20

// HashPrompt returns the hex SHA-256 of prompt, or "" for an empty prompt.
// Prompts longer than MaxHashSize are hashed on their first MaxHashSize bytes.
func HashPrompt(prompt string) string {
	if prompt == "" {
		return ""
	}
	if len(prompt) > MaxHashSize {
		prompt = prompt[:MaxHashSize]
	}
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
