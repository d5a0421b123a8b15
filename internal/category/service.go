package category

import (
	"context"
	"strings"
)

type Service interface {
	// List returns the active top-level categories with their active
	// subcategories nested.
	List(ctx context.Context) ([]Category, error)
	Subcategories(ctx context.Context, categoryID, filter string) ([]Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Category, error) {
	flat, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(flat), nil
}

func (s *service) Subcategories(ctx context.Context, categoryID, filter string) ([]Category, error) {
	return s.repo.Children(ctx, categoryID, strings.TrimSpace(filter))
}

// buildTree nests children under their parents, keeping the input order at
// each level. Children of a parent that is not in flat are dropped.
func buildTree(flat []Category) []Category {
	children := make(map[string][]Category)
	for _, c := range flat {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var attach func(c Category) Category
	attach = func(c Category) Category {
		for _, child := range children[c.ID] {
			c.Subcategories = append(c.Subcategories, attach(child))
		}
		return c
	}

	roots := make([]Category, 0)
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, attach(c))
		}
	}
	return roots
}
