package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeyPrefix is the prefix for all label cache keys
	KeyPrefix = "v2t"
)

// KeyGenerator derives cache keys from the texts sent for labeling
type KeyGenerator struct {
	prefix string
}

// NewKeyGenerator creates a key generator; an empty prefix uses KeyPrefix.
func NewKeyGenerator(prefix string) *KeyGenerator {
	if prefix == "" {
		prefix = KeyPrefix
	}
	return &KeyGenerator{prefix: prefix}
}

// GenerateKey hashes the grouped texts together with the model name. Group
// boundaries are part of the hash, so moving a text between groups changes the key.
func (g *KeyGenerator) GenerateKey(groups [][]string, model string) string {
	hasher := sha256.New()
	for _, group := range groups {
		for _, text := range group {
			hasher.Write([]byte(text))
			hasher.Write([]byte{0})
		}
		hasher.Write([]byte{1})
	}
	contentHash := hex.EncodeToString(hasher.Sum(nil))

	// Format: prefix:model:contenthash
	return fmt.Sprintf("%s:%s:%s", g.prefix, strings.ToLower(model), contentHash)
}
