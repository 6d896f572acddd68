package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/af-corp/content-assistant/internal/types"
)

// ContentKey derives the cache key of a normalized content request. Struct
// fields encode in declaration order and map keys sorted, so two requests
// with the same values always share a key.
func ContentKey(req types.ContentRequest) (string, error) {
	return hashKey(string(req.Kind), req)
}

// NewsletterKey derives the cache key of a normalized newsletter request.
func NewsletterKey(req types.NewsletterRequest) (string, error) {
	return hashKey(string(types.KindNewsletter), req)
}

// ImageKey derives the cache key of an image prompt.
func ImageKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "image:" + hex.EncodeToString(sum[:])
}

func hashKey(prefix string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:]), nil
}
