package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"bookchat/internal/index"
)

const className = "BookChunk"

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) StoreRecord(ctx context.Context, rec index.Record) error {
	_, err := s.client.Data().Creator().
		WithClassName(className).
		WithProperties(map[string]interface{}{
			"content":    rec.Content,
			"filename":   rec.Filename,
			"page":       rec.Page,
			"chunkId":    rec.ChunkID,
			"chunkIndex": rec.ChunkIndex,
		}).
		WithVector(rec.Vector).
		Do(ctx)
	return err
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]index.Match, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "filename"},
		{Name: "page"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var matches []index.Match
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return matches, nil
	}
	rows, ok := data[className].([]interface{})
	if !ok {
		return matches, nil
	}

	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		var m index.Match
		if content, ok := props["content"].(string); ok {
			m.Content = content
		}
		if filename, ok := props["filename"].(string); ok {
			m.Filename = filename
		}
		if page, ok := props["page"].(float64); ok {
			m.Page = int(page)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				m.Distance = float32(distance)
			}
		}

		matches = append(matches, m)
	}

	return matches, nil
}

// Count returns the number of indexed chunks, for the stats endpoint.
func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	data, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := data[className].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	props, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := props["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}
