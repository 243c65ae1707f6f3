package exchangelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "chat-exchanges"

// ElasticsearchRepository indexes exchanges for analytics, keyed by exchange id.
type ElasticsearchRepository struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchRepository(client *elasticsearch.Client, index string) *ElasticsearchRepository {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchRepository{client: client, index: index}
}

func (r *ElasticsearchRepository) Name() string { return "elasticsearch" }

func (r *ElasticsearchRepository) LogExchange(ctx context.Context, ex Exchange) error {
	body, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode exchange: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: ex.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index exchange: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index exchange: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
