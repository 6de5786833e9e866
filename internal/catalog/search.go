package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Skotchmaster/rad_plants/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type StoreSearcher struct {
	Store *Store
}

func (s StoreSearcher) Search(_ context.Context, query string) ([]models.Product, error) {
	return s.Store.Search(query), nil
}

// ESSearcher keeps the catalogue in an Elasticsearch index and answers
// searches with a case-insensitive wildcard on the raw product name, which
// matches StoreSearcher result for result.
type ESSearcher struct {
	ES    *elasticsearch.Client
	Index string
}

type indexDoc struct {
	models.Product
	Seq int `json:"seq"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":   {"type": "keyword"},
      "name": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "category": {"type": "keyword"},
      "seq":  {"type": "integer"}
    }
  }
}`

func (s *ESSearcher) EnsureIndex(ctx context.Context) error {
	res, err := s.ES.Indices.Exists([]string{s.Index}, s.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = s.ES.Indices.Create(
		s.Index,
		s.ES.Indices.Create.WithContext(ctx),
		s.ES.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: create index: %s: %s", res.Status(), body)
	}
	return nil
}

func (s *ESSearcher) IndexProducts(ctx context.Context, products []models.Product) error {
	if err := s.EnsureIndex(ctx); err != nil {
		return err
	}
	for i, p := range products {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(indexDoc{Product: p, Seq: i}); err != nil {
			return fmt.Errorf("es: encode product %s: %w", p.ID, err)
		}
		res, err := s.ES.Index(
			s.Index,
			&buf,
			s.ES.Index.WithContext(ctx),
			s.ES.Index.WithDocumentID(p.ID),
			s.ES.Index.WithRefresh("true"),
		)
		if err != nil {
			return fmt.Errorf("es: index product %s: %w", p.ID, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("es: index product %s: %s", p.ID, res.Status())
		}
	}
	return nil
}

func (s *ESSearcher) Search(ctx context.Context, query string) ([]models.Product, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Product{}, nil
	}

	body := map[string]any{
		"query": map[string]any{
			"wildcard": map[string]any{
				"name.raw": map[string]any{
					"value":            "*" + escapeWildcard(query) + "*",
					"case_insensitive": true,
				},
			},
		},
		"sort": []any{map[string]any{"seq": "asc"}},
		"size": 100,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source indexDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("es: decode response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source.Product
	}
	return prods, nil
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}
