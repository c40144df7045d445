package services

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// maxVocabulary bounds the TF-IDF vocabulary built for one comparison.
const maxVocabulary = 1000

// tokenPattern matches runs of two or more letters, marks, digits or
// underscores in any script.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

type TextSimilarity interface {
	Similarity(a, b string) float64
}

type tfidfSimilarity struct {
	maxFeatures int
}

func NewTextSimilarity() TextSimilarity {
	return &tfidfSimilarity{maxFeatures: maxVocabulary}
}

// NormalizeSkills lower-cases each comma separated term and joins the terms
// with single spaces.
func NormalizeSkills(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	parts := strings.Split(text, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			terms = append(terms, p)
		}
	}
	return strings.Join(terms, " ")
}

// Similarity returns the cosine similarity of the TF-IDF vectors of a and b,
// treating the pair as a two document corpus. Degenerate input yields 0.
func (s *tfidfSimilarity) Similarity(a, b string) float64 {
	docA := tokenize(NormalizeSkills(a))
	docB := tokenize(NormalizeSkills(b))
	if len(docA) == 0 || len(docB) == 0 {
		return 0
	}

	countsA := termCounts(docA)
	countsB := termCounts(docB)

	vocab := s.vocabulary(countsA, countsB)
	if len(vocab) == 0 {
		return 0
	}

	vecA := make([]float64, len(vocab))
	vecB := make([]float64, len(vocab))
	for i, term := range vocab {
		df := 0
		if countsA[term] > 0 {
			df++
		}
		if countsB[term] > 0 {
			df++
		}
		// smoothed idf over a corpus of two documents
		idf := math.Log(3.0/float64(1+df)) + 1
		vecA[i] = float64(countsA[term]) * idf
		vecB[i] = float64(countsB[term]) * idf
	}

	sim := cosine(vecA, vecB)
	if math.IsNaN(sim) || sim < 0 {
		return 0
	}
	return math.Min(sim, 1.0)
}

// vocabulary keeps the most frequent terms across both documents, ties broken
// alphabetically, up to maxFeatures.
func (s *tfidfSimilarity) vocabulary(countsA, countsB map[string]int) []string {
	totals := make(map[string]int, len(countsA)+len(countsB))
	for t, c := range countsA {
		totals[t] += c
	}
	for t, c := range countsB {
		totals[t] += c
	}

	terms := make([]string, 0, len(totals))
	for t := range totals {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if s.maxFeatures > 0 && len(terms) > s.maxFeatures {
		terms = terms[:s.maxFeatures]
	}
	return terms
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	raw := tokenPattern.FindAllString(text, -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
