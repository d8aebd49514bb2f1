// Package search is the eventually-consistent projection of users and chats
// into the full-text index. Writes are fire-and-forget relative to the ledger
// transaction; the ledger stays authoritative when a write fails.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"messenger-service/internal/models"
)

const (
	ChatsIndex = "chats"
	UsersIndex = "users"
)

// ChatDocument is the indexed form of a chat. Members mirrors the ledger's
// current membership list.
type ChatDocument struct {
	ChatType          models.ChatType `json:"chat_type"`
	Name              string          `json:"name,omitempty"`
	Description       string          `json:"description,omitempty"`
	Avatar            string          `json:"avatar,omitempty"`
	Members           []string        `json:"members"`
	UserNames         []string        `json:"user_names,omitempty"`
	IsVisible         bool            `json:"is_visible"`
	IsOpenForMessages bool            `json:"is_open_for_messages"`
}

// UserDocument is the indexed form of a user.
type UserDocument struct {
	Username    string `json:"username"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	IsVisible   bool   `json:"is_visible"`
}

// Hit is one search result across the two indexes.
type Hit struct {
	UUID    string         `json:"uuid"`
	Index   string         `json:"type"`
	Source  map[string]any `json:"source"`
	IsYours bool           `json:"is_yours"`
}

// Result is a parsed multi-index query response.
type Result struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Index is the search view contract.
type Index interface {
	UpsertChat(ctx context.Context, chatUUID string, doc ChatDocument) error
	UpdateChatMembers(ctx context.Context, chatUUID string, members []string) error
	DeleteChat(ctx context.Context, chatUUID string) error
	UpsertUser(ctx context.Context, userUUID string, doc UserDocument) error
	Search(ctx context.Context, query string, indexes []string, userUUID string) (Result, error)
}

// ElasticIndex is a go-elasticsearch implementation of Index.
type ElasticIndex struct {
	client *elasticsearch.Client
}

// NewElasticIndex constructs an ElasticIndex.
func NewElasticIndex(url string) (*ElasticIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("elastic client: %w", err)
	}
	return &ElasticIndex{client: client}, nil
}

// UpsertChat indexes the chat document under its UUID.
func (e *ElasticIndex) UpsertChat(ctx context.Context, chatUUID string, doc ChatDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := e.client.Index(ChatsIndex, bytes.NewReader(body),
		e.client.Index.WithDocumentID(chatUUID),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index chat %s: %s", chatUUID, res.Status())
	}
	return nil
}

// UpdateChatMembers rewrites only the members field of the chat document.
func (e *ElasticIndex) UpdateChatMembers(ctx context.Context, chatUUID string, members []string) error {
	body, err := json.Marshal(map[string]any{"doc": map[string]any{"members": members}})
	if err != nil {
		return err
	}
	res, err := e.client.Update(ChatsIndex, chatUUID, bytes.NewReader(body),
		e.client.Update.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("update chat members %s: %s", chatUUID, res.Status())
	}
	return nil
}

// DeleteChat removes the chat document.
func (e *ElasticIndex) DeleteChat(ctx context.Context, chatUUID string) error {
	res, err := e.client.Delete(ChatsIndex, chatUUID, e.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// a document that was never projected is fine to "delete"
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete chat %s: %s", chatUUID, res.Status())
	}
	return nil
}

// UpsertUser indexes the user document under its UUID.
func (e *ElasticIndex) UpsertUser(ctx context.Context, userUUID string, doc UserDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := e.client.Index(UsersIndex, bytes.NewReader(body),
		e.client.Index.WithDocumentID(userUUID),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", userUUID, res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-field query over the given indexes, filtered to
// visible documents. When userUUID is set, chat hits are flagged with
// is_yours for membership.
func (e *ElasticIndex) Search(ctx context.Context, query string, indexes []string, userUUID string) (Result, error) {
	if len(indexes) == 0 {
		indexes = []string{UsersIndex, ChatsIndex}
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"username^3", "name^3", "user_names^2", "first_name", "last_name", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_visible": true},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, err
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(indexes...),
		e.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return Result{}, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return Result{}, fmt.Errorf("search %q: %s", query, res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Index  string         `json:"_index"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Result{}, err
	}

	result := Result{Total: parsed.Hits.Total.Value}
	for _, hit := range parsed.Hits.Hits {
		item := Hit{UUID: hit.ID, Index: hit.Index, Source: hit.Source}
		if userUUID != "" && strings.HasPrefix(hit.Index, ChatsIndex) {
			if members, ok := hit.Source["members"].([]any); ok {
				for _, member := range members {
					if member == userUUID {
						item.IsYours = true
						break
					}
				}
			}
		}
		result.Hits = append(result.Hits, item)
	}
	return result, nil
}
