package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// CategoryService holds the category forest of one storefront and answers
// path and descendant lookups against it.
type CategoryService struct {
	provider providers.CategoryProvider
	query    entities.CategoryQuery

	mu      sync.RWMutex
	loaded  bool
	ordered []string
	byID    map[string]entities.Category
	byPath  map[string]string
}

// NewCategoryService creates a category service
func NewCategoryService(provider providers.CategoryProvider, query entities.CategoryQuery) *CategoryService {
	return &CategoryService{
		provider: provider,
		query:    query,
		byID:     map[string]entities.Category{},
		byPath:   map[string]string{},
	}
}

// Load fetches the forest and replaces the current one
func (s *CategoryService) Load(ctx context.Context) error {
	categories, err := s.provider.FetchCategories(ctx, s.query)
	if err != nil {
		return apperrors.NewExternalError("failed to fetch categories", err)
	}
	s.Replace(categories)
	log.Ctx(ctx).Debug().Int("categories", len(categories)).Msg("category tree loaded")
	return nil
}

// EnsureLoaded loads the forest on first use
func (s *CategoryService) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

// Replace swaps in a new forest. Later duplicates of an id win.
func (s *CategoryService) Replace(categories []entities.Category) {
	byID := make(map[string]entities.Category, len(categories))
	byPath := make(map[string]string, len(categories))
	ordered := make([]string, 0, len(categories))

	for _, c := range categories {
		if c.ID == "" {
			continue
		}
		if _, seen := byID[c.ID]; !seen {
			ordered = append(ordered, c.ID)
		}
		byID[c.ID] = c
		if c.URLPath != "" {
			byPath[normalizeCategoryPath(c.URLPath)] = c.ID
		}
	}

	s.mu.Lock()
	s.byID = byID
	s.byPath = byPath
	s.ordered = ordered
	s.loaded = true
	s.mu.Unlock()
}

// Categories returns the forest in the order it was fetched
func (s *CategoryService) Categories() []entities.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Category, 0, len(s.ordered))
	for _, id := range s.ordered {
		out = append(out, s.byID[id])
	}
	return out
}

// FindByID returns the category with id
func (s *CategoryService) FindByID(id string) (entities.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

// FindByPath resolves a URL path such as "gear/bags", "/gear/bags/" or
// "gear.bags" to its category.
func (s *CategoryService) FindByPath(path string) (entities.Category, bool) {
	key := normalizeCategoryPath(path)
	if key == "" {
		return entities.Category{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[key]
	if !ok {
		return entities.Category{}, false
	}
	c, ok := s.byID[id]
	return c, ok
}

// BuildCategoryList returns the start category followed by every descendant
// in depth-first preorder over the declared children. Each category appears
// once; ids that do not resolve are skipped.
func (s *CategoryService) BuildCategoryList(startID string) []entities.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, ok := s.byID[startID]
	if !ok {
		return nil
	}

	visited := map[string]bool{start.ID: true}
	out := []entities.Category{start}

	var walk func(c entities.Category)
	walk = func(c entities.Category) {
		for _, childID := range c.Children {
			if visited[childID] {
				continue
			}
			child, ok := s.byID[childID]
			if !ok {
				continue
			}
			visited[childID] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(start)

	return out
}

// ResolveURLPaths returns the URL paths a category listing filters on. An
// unknown path is passed through on its own, in slash form, so the backend
// can still match it.
func (s *CategoryService) ResolveURLPaths(path string) []string {
	path = normalizeCategoryPath(path)
	if path == "" {
		return nil
	}
	start, ok := s.FindByPath(path)
	if !ok {
		return []string{path}
	}

	list := s.BuildCategoryList(start.ID)
	paths := make([]string, 0, len(list))
	for _, c := range list {
		paths = append(paths, c.URLPath)
	}
	return paths
}

// Resolve returns the category at path and its descendant list
func (s *CategoryService) Resolve(ctx context.Context, path string) (entities.Category, []entities.Category, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return entities.Category{}, nil, err
	}
	c, ok := s.FindByPath(path)
	if !ok {
		return entities.Category{}, nil, apperrors.NewNotFoundError(fmt.Sprintf("category %q not found", path))
	}
	return c, s.BuildCategoryList(c.ID), nil
}

func normalizeCategoryPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, ".", "/")
	return strings.Trim(path, "/")
}
