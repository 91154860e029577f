package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ashwinyue/procure-ai/internal/model"
)

// esQuery multi_match 加权检索
// name^3 > category^2 > description，归档物料默认过滤
func esQuery(query string, limit int, includeArchived bool) map[string]interface{} {
	match := map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":  query,
			"fields": []string{"name^3", "category^2", "description"},
		},
	}

	boolQuery := map[string]interface{}{"must": []interface{}{match}}
	if !includeArchived {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{
				"term": map[string]interface{}{"status": model.ItemStatusArchived},
			},
		}
	}

	return map[string]interface{}{
		"query":   map[string]interface{}{"bool": boolQuery},
		"size":    limit,
		"_source": false,
	}
}

// searchES 走 Elasticsearch 检索，命中 ID 后回表取最新数据
func (s *Service) searchES(ctx context.Context, query string, limit int, includeArchived bool) ([]*model.Item, error) {
	body, err := json.Marshal(esQuery(query, limit, includeArchived))
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es search error: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	if len(ids) == 0 {
		return []*model.Item{}, nil
	}

	items, err := s.items.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	// 回表结果按 ES 相关度顺序重排
	byID := make(map[string]*model.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]*model.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, nil
}

// indexItem 尽力而为地写入检索索引
func (s *Service) indexItem(ctx context.Context, item *model.Item) {
	if s.es == nil {
		return
	}

	doc := map[string]interface{}{
		"name":        item.Name,
		"category":    item.Category,
		"description": item.Description,
		"status":      item.Status,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return
	}

	res, err := s.es.Index(
		s.index,
		bytes.NewReader(body),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(item.ID),
	)
	if err != nil {
		log.Printf("Warning: failed to index item %s: %v", item.ID, err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("Warning: failed to index item %s: %s", item.ID, res.String())
	}
}
