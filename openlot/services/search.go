package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openlot/openlot/openlot/database/repositories"
	"github.com/sahilm/fuzzy"
)

const (
	suggestionLimit = 10
	indexMaxAge     = 5 * time.Minute
	minQueryLength  = 2
)

// propertySearchItem is one entry of the in-memory suggestion index.
type propertySearchItem struct {
	ID    int64
	Title string
	City  string
	text  string
}

// propertySearchItems implements fuzzy.Source.
type propertySearchItems []propertySearchItem

func (items propertySearchItems) Len() int {
	return len(items)
}

func (items propertySearchItems) String(i int) string {
	return items[i].text
}

// Suggestion is what the typeahead endpoint returns per match.
type Suggestion struct {
	PropertyID int64  `json:"property_id"`
	Title      string `json:"title"`
	City       string `json:"city"`
	Score      int    `json:"score"`
}

// PropertySearchService serves typeahead suggestions by fuzzy-matching
// against an in-memory index of listed properties. The index is rebuilt
// lazily once it goes stale, so the database is not hit per keystroke.
type PropertySearchService struct {
	repo repositories.PropertyRepository

	mu      sync.RWMutex
	items   propertySearchItems
	builtAt time.Time
}

func NewPropertySearchService(repo repositories.PropertyRepository) *PropertySearchService {
	return &PropertySearchService{repo: repo}
}

// Suggest returns up to suggestionLimit matches for the query, best first.
func (s *PropertySearchService) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = normalizeQuery(query)
	if len(query) < minQueryLength {
		return nil, nil
	}

	items, err := s.index(ctx)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, items)

	suggestions := make([]Suggestion, 0, suggestionLimit)
	for _, match := range matches {
		item := items[match.Index]
		suggestions = append(suggestions, Suggestion{
			PropertyID: item.ID,
			Title:      item.Title,
			City:       item.City,
			Score:      match.Score,
		})
		if len(suggestions) >= suggestionLimit {
			break
		}
	}

	return suggestions, nil
}

// Invalidate drops the index so the next query rebuilds it. Called after
// a property is listed or archived.
func (s *PropertySearchService) Invalidate() {
	s.mu.Lock()
	s.builtAt = time.Time{}
	s.mu.Unlock()
}

func (s *PropertySearchService) index(ctx context.Context) (propertySearchItems, error) {
	s.mu.RLock()
	if time.Since(s.builtAt) < indexMaxAge {
		items := s.items
		s.mu.RUnlock()
		return items, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have rebuilt while we waited for the lock.
	if time.Since(s.builtAt) < indexMaxAge {
		return s.items, nil
	}

	properties, err := s.repo.SearchIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}

	items := make(propertySearchItems, len(properties))
	for i, p := range properties {
		items[i] = propertySearchItem{
			ID:    p.ID,
			Title: p.Title,
			City:  p.City,
			text:  normalizeQuery(p.Title + " " + p.City),
		}
	}

	s.items = items
	s.builtAt = time.Now()
	return items, nil
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
