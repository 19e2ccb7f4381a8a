package content

import (
	"context"
	"sort"
)

// Repository reads the published catalogue. Each call returns a fresh snapshot.
type Repository interface {
	// ListCaseStudies returns published case studies, newest first.
	ListCaseStudies(ctx context.Context) ([]CaseStudy, error)
	// ListSolutions returns active solutions by ascending display order.
	ListSolutions(ctx context.Context) ([]Solution, error)
}

// InMemoryRepository serves the catalogue from a seed loaded at startup.
type InMemoryRepository struct {
	caseStudies []CaseStudy
	solutions   []Solution
}

// NewInMemoryRepository copies the seed so later changes to it are not visible.
func NewInMemoryRepository(seed *Seed) *InMemoryRepository {
	r := &InMemoryRepository{}
	if seed == nil {
		return r
	}
	for _, cs := range seed.CaseStudies {
		r.caseStudies = append(r.caseStudies, cs.clone())
	}
	for _, s := range seed.Solutions {
		r.solutions = append(r.solutions, s.clone())
	}
	return r
}

func (r *InMemoryRepository) ListCaseStudies(ctx context.Context) ([]CaseStudy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]CaseStudy, 0, len(r.caseStudies))
	for _, cs := range r.caseStudies {
		if cs.IsPublished {
			out = append(out, cs.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) ListSolutions(ctx context.Context) ([]Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Solution, 0, len(r.solutions))
	for _, s := range r.solutions {
		if s.IsActive {
			out = append(out, s.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
