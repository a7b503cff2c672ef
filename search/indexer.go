package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
)

var (
	serviceInstance *Service
	serviceOnce     sync.Once
)

// GetService returns the singleton search Service.
func GetService() *Service {
	serviceOnce.Do(func() {
		serviceInstance = NewService()
	})
	return serviceInstance
}

// Service indexes catalog items into Elasticsearch and serves item search.
// A nil client (unset ELASTICSEARCH_HOST or unreachable) disables the
// feature; indexing becomes a no-op and Search reports unconfigured.
type Service struct {
	client *elasticsearch.Client
	prefix string
}

func NewService() *Service {
	host := os.Getenv("ELASTICSEARCH_HOST")
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "posbridge"
	}
	if host == "" {
		return &Service{prefix: prefix}
	}

	cfg := elasticsearch.Config{
		Addresses: []string{host},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return &Service{prefix: prefix}
	}
	return &Service{client: client, prefix: prefix}
}

// Enabled reports whether Elasticsearch is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// ItemDoc is the indexed shape of a catalog item.
type ItemDoc struct {
	ItemID             uint   `json:"item_id"`
	ExternalID         string `json:"external_id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	CategoryExternalID string `json:"category_external_id"`
	Enabled            bool   `json:"enabled"`
}

func (s *Service) indexName(catalogID uint) string {
	return fmt.Sprintf("%s_catalog_item_%d", s.prefix, catalogID)
}

// IndexItems bulk-indexes the catalog's items. Best-effort: a sync pass
// never fails because the index is down.
func (s *Service) IndexItems(ctx context.Context, catalogID uint, docs []ItemDoc) {
	if s.client == nil || len(docs) == 0 {
		return
	}
	var buf bytes.Buffer
	for _, d := range docs {
		meta := fmt.Sprintf(`{"index":{"_id":"%d"}}`, d.ItemID)
		buf.WriteString(meta)
		buf.WriteByte('\n')
		line, err := json.Marshal(d)
		if err != nil {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.indexName(catalogID)),
	)
	if err != nil {
		log.Printf("search: bulk index catalog %d: %v", catalogID, err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Printf("search: bulk index catalog %d: %s", catalogID, res.String())
	}
}

// Search returns matching item ids for a query, ranked by relevance.
func (s *Service) Search(ctx context.Context, catalogID uint, query string, size, page int) ([]uint, int, error) {
	if s.client == nil {
		return nil, 0, fmt.Errorf("elasticsearch not configured")
	}
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}

	body := map[string]interface{}{
		"from": (page - 1) * size,
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"name^3", "description"},
						},
					},
				},
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"enabled": true}},
				},
			},
		},
	}
	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName(catalogID)),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch error: %s", strings.TrimSpace(res.String()))
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ItemDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		ids = append(ids, hit.Source.ItemID)
	}
	return ids, esResp.Hits.Total.Value, nil
}
