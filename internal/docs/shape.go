package docs

import (
	"sort"

	"engagerag/internal/domain"
)

// Shape summarizes a document set by size and category set. Two sets with
// different shapes can never have been synthesized from the same inputs.
type Shape struct {
	Count      int               `json:"document_count"`
	Categories []domain.Category `json:"categories"`
}

// Equal compares count and category set.
func (s Shape) Equal(o Shape) bool {
	if s.Count != o.Count || len(s.Categories) != len(o.Categories) {
		return false
	}
	for i := range s.Categories {
		if s.Categories[i] != o.Categories[i] {
			return false
		}
	}
	return true
}

// ShapeOf measures an existing document set.
func ShapeOf(documents []domain.Document) Shape {
	set := make(map[domain.Category]struct{})
	for _, d := range documents {
		set[d.Category] = struct{}{}
	}
	return Shape{Count: len(documents), Categories: sortedCategories(set)}
}

// ExpectedShape predicts the shape Build would produce for the dataset the
// snapshot was computed from, without reading the dataset itself.
func ExpectedShape(snap domain.Snapshot) Shape {
	distinct := 0
	for _, n := range snap.PostTypeDistribution {
		if n > 0 {
			distinct++
		}
	}
	set := map[domain.Category]struct{}{
		domain.CategoryStatistics:   {},
		domain.CategoryTimeAnalysis: {},
		domain.CategoryDayAnalysis:  {},
	}
	if distinct > 0 {
		set[domain.CategoryPostTypeAnalysis] = struct{}{}
		set[domain.CategoryRecommendations] = struct{}{}
	}
	if snap.TotalPosts > 0 {
		set[domain.CategorySamplePost] = struct{}{}
	}
	return Shape{Count: ExpectedCount(distinct, snap.TotalPosts), Categories: sortedCategories(set)}
}

func sortedCategories(set map[domain.Category]struct{}) []domain.Category {
	out := make([]domain.Category, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
