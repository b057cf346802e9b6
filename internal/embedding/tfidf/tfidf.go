package tfidf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Embedder implements a simple TF-IDF vectorizer.
// It builds a vocabulary from the corpus and computes IDF values.
type Embedder struct {
	mu           sync.RWMutex
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// state is the persisted form: terms in vocabulary order with their IDF.
type state struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{
		vocabulary: make(map[string]int),
		// digits are kept so hours and counts in the synthesized documents are searchable
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	// Build vocabulary and document frequencies
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	idf := make([]float64, len(terms))
	N := float64(len(corpus))
	for i, term := range terms {
		// Smoothed IDF
		idf[i] = math.Log((1+N)/(1+float64(df[term]))) + 1.0
	}
	e.install(terms, idf)
	return nil
}

func (e *Embedder) install(terms []string, idf []float64) {
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vocabulary = vocab
	e.idf = idf
	e.dimension = len(terms)
	e.prepared = true
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimension
}

// Embed computes the L2-normalized TF-IDF embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		tfv := float64(count) / float64(total)
		vec[idx] = tfv * e.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// SaveState writes the vocabulary and IDF table to path.
func (e *Embedder) SaveState(path string) error {
	e.mu.RLock()
	if !e.prepared {
		e.mu.RUnlock()
		return errors.New("tfidf embedder not prepared")
	}
	st := state{Terms: make([]string, e.dimension), IDF: append([]float64(nil), e.idf...)}
	for term, i := range e.vocabulary {
		st.Terms[i] = term
	}
	e.mu.RUnlock()

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadState restores a vocabulary written by SaveState.
func (e *Embedder) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode tfidf state: %w", err)
	}
	if len(st.Terms) == 0 || len(st.Terms) != len(st.IDF) {
		return fmt.Errorf("tfidf state has %d terms and %d weights", len(st.Terms), len(st.IDF))
	}
	e.install(st.Terms, st.IDF)
	return nil
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
