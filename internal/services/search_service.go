package services

import (
	"context"
	"log"

	"messenger-service/internal/cache"
	"messenger-service/internal/models"
	"messenger-service/internal/search"
)

// SearchService runs user/chat queries and keeps the per-user search
// history.
type SearchService struct {
	index search.Index
	store cache.Store
}

// NewSearchService constructs a SearchService.
func NewSearchService(index search.Index, store cache.Store) *SearchService {
	return &SearchService{index: index, store: store}
}

// Search queries the given indexes and records the query in the actor's
// history. History failures are logged only.
func (s *SearchService) Search(ctx context.Context, actor models.User, query string, indexes []string) (search.Result, error) {
	result, err := s.index.Search(ctx, query, indexes, actor.UUID)
	if err != nil {
		return search.Result{}, err
	}

	if s.store != nil {
		if err := s.store.PushSearchHistory(ctx, actor.UUID, query); err != nil {
			log.Printf("search history push failed user=%s: %v", actor.UUID, err)
		}
	}
	return result, nil
}

// History returns the actor's recent queries, newest first.
func (s *SearchService) History(ctx context.Context, actor models.User) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.SearchHistory(ctx, actor.UUID)
}
