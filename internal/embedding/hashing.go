package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"
)

const defaultHashingDimension = 512

// HashingProvider is a local, deterministic bag-of-words embedder. Each lower-cased token
// is hashed into a bucket and the bucket counts are L2-normalized. It needs no network
// access, which makes it the default for development and the CLI.
type HashingProvider struct {
	dim int
}

// NewHashingProvider builds a HashingProvider producing vectors of length dim.
func NewHashingProvider(dim int) *HashingProvider {
	if dim <= 0 {
		dim = defaultHashingDimension
	}
	return &HashingProvider{dim: dim}
}

// Embed implements Provider. Text without tokens maps to the zero vector.
func (h *HashingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, h.dim)
	for _, token := range tokenize(text) {
		vec[bucket(token, h.dim)]++
	}
	return normalize(vec), nil
}

// Describe implements Describer.
func (h *HashingProvider) Describe() string {
	return fmt.Sprintf("hashing/%d", h.dim)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func bucket(token string, dim int) int {
	sum := sha256.Sum256([]byte(token))
	return int(binary.BigEndian.Uint32(sum[:4]) % uint32(dim))
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
