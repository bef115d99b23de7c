package service

import (
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions matches the vector(3) recipe column.
const EmbeddingDimensions = 3

// LocalEmbedder computes embeddings in-process with GenerateEmbedding.
type LocalEmbedder struct{}

func (LocalEmbedder) GenerateEmbedding(text string) (pgvector.Vector, error) {
	return GenerateEmbedding(text), nil
}

// GenerateEmbedding returns a deterministic embedding of text built from its
// word count and vowel and consonant ratios. Texts with similar composition
// end up close under the L2 distance.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case unicode.IsLetter(r):
			consonants++
		}
	}
	letters := vowels + consonants
	if letters == 0 {
		return pgvector.NewVector(make([]float32, EmbeddingDimensions))
	}
	words := float32(math.Log1p(float64(len(strings.Fields(text)))))
	return pgvector.NewVector([]float32{words, vowels / letters, consonants / letters})
}
