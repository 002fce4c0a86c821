// Package search keeps the class catalog in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/sport_academy/internal/models"
)

const DefaultIndex = "classes"

type Index interface {
	IndexClass(ctx context.Context, c models.Class) error
	UpdateClass(ctx context.Context, id string, fields map[string]any) error
	Search(ctx context.Context, q string) (int64, []models.Class, error)
}

// NewClient connects and checks the cluster answers an info request.
func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

// classDoc is the indexed source. The id travels as the document _id.
type classDoc struct {
	ClassName        string  `json:"className"`
	ClassPhoto       string  `json:"classPhoto"`
	InstructorName   string  `json:"instructorName"`
	InstructorEmail  string  `json:"instructorEmail"`
	AvailableSet     int     `json:"availableSet"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	EnrolledStudents int     `json:"enrolledStudents"`
}

type ElasticIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewElasticIndex(es *elasticsearch.Client, index string) *ElasticIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticIndex{ES: es, Index: index}
}

func (e *ElasticIndex) IndexClass(ctx context.Context, c models.Class) error {
	body, err := json.Marshal(classDoc{
		ClassName:        c.ClassName,
		ClassPhoto:       c.ClassPhoto,
		InstructorName:   c.InstructorName,
		InstructorEmail:  c.InstructorEmail,
		AvailableSet:     c.AvailableSet,
		Price:            c.Price,
		Status:           c.Status,
		EnrolledStudents: c.EnrolledStudents,
	})
	if err != nil {
		return fmt.Errorf("index class: %w", err)
	}

	res, err := e.ES.Index(e.Index, bytes.NewReader(body),
		e.ES.Index.WithContext(ctx),
		e.ES.Index.WithDocumentID(c.ID),
	)
	if err != nil {
		return fmt.Errorf("index class: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index class: %s", res.Status())
	}
	return nil
}

func (e *ElasticIndex) UpdateClass(ctx context.Context, id string, fields map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": fields})
	if err != nil {
		return fmt.Errorf("update class doc: %w", err)
	}

	res, err := e.ES.Update(e.Index, id, bytes.NewReader(body),
		e.ES.Update.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("update class doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("update class doc: %s", res.Status())
	}
	return nil
}

func searchBody(q string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"className^2", "instructorName", "instructorEmail"},
				"fuzziness": "AUTO",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string   `json:"_id"`
			Source classDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(r io.Reader) (int64, []models.Class, error) {
	var sr searchResponse
	if err := json.NewDecoder(r).Decode(&sr); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	classes := make([]models.Class, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		s := h.Source
		classes = append(classes, models.Class{
			ID:               h.ID,
			ClassName:        s.ClassName,
			ClassPhoto:       s.ClassPhoto,
			InstructorName:   s.InstructorName,
			InstructorEmail:  s.InstructorEmail,
			AvailableSet:     s.AvailableSet,
			Price:            s.Price,
			Status:           s.Status,
			EnrolledStudents: s.EnrolledStudents,
		})
	}
	return sr.Hits.Total.Value, classes, nil
}

func (e *ElasticIndex) Search(ctx context.Context, q string) (int64, []models.Class, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(strings.TrimSpace(q))); err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	res, err := e.ES.Search(
		e.ES.Search.WithContext(ctx),
		e.ES.Search.WithIndex(e.Index),
		e.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	return decodeHits(res.Body)
}
