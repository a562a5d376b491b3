package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/saasbase-io/accounts/internal/domain/entity"
)

// indexAccount pushes the account's public fields into Elasticsearch. Failures
// are logged, never propagated; search lags behind the store at worst.
func indexAccount(ctx context.Context, es *elasticsearch.Client, index string, logger *logrus.Logger, a *entity.Account) {
	if es == nil || index == "" {
		return
	}
	doc := map[string]any{
		"id":               a.ID,
		"name":             a.Name,
		"slug":             a.Slug,
		"personal_account": a.PersonalAccount,
		"created_at":       a.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":       a.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: index, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, es)
	if err != nil {
		if logger != nil {
			logger.WithError(err).WithField("account_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && logger != nil {
		logger.WithField("status", res.Status()).WithField("account_id", a.ID).Warn("es index response error")
	}
}

func deleteAccountIndex(ctx context.Context, es *elasticsearch.Client, index string, logger *logrus.Logger, accountID string) {
	if es == nil || index == "" {
		return
	}
	req := esapi.DeleteRequest{Index: index, DocumentID: accountID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, es)
	if err != nil {
		if logger != nil {
			logger.WithError(err).WithField("account_id", accountID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// searchAccounts runs a multi_match query over name and slug.
func searchAccounts(ctx context.Context, es *elasticsearch.Client, index, q string, size int) ([]map[string]any, error) {
	if es == nil || index == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "slug"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := es.Search(es.Search.WithContext(c), es.Search.WithIndex(index), es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
