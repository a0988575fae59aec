package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository using cosine similarity.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]Document)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, docs []Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return nil
}

func (r *MemoryRepository) Search(ctx context.Context, vec []float32, topK int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	results := make([]SearchResult, 0, len(r.docs))
	for _, d := range r.docs {
		results = append(results, SearchResult{
			ID:       d.ID,
			Score:    cosine(vec, d.Vector),
			Content:  d.Content,
			Metadata: d.Metadata,
		})
	}
	r.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of stored documents.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func (r *MemoryRepository) Close() error { return nil }

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ Repository = (*MemoryRepository)(nil)
