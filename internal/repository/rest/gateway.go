// Package rest reads records from a PostgREST-style HTTP data API
// (`/rest/v1/{table}` with `col=eq.value` filters).
package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/config"
	"github.com/mamadbah2/ganadero/internal/repository"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// Gateway is a resty-backed implementation of repository.Gateway.
type Gateway struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewGateway builds a REST gateway using the provided configuration values.
func NewGateway(cfg config.RESTConfig, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base+"/rest/v1").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.APIKey != "" {
		restyClient.
			SetHeader("apikey", cfg.APIKey).
			SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Gateway{httpClient: restyClient, logger: logger}
}

// apiError mirrors the PostgREST error body.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// Fetch implements repository.Gateway.
func (g *Gateway) Fetch(ctx context.Context, collection repository.Collection, query repository.Query) ([]record.Record, error) {
	schema, err := repository.SchemaFor(collection)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(schema); err != nil {
		return nil, err
	}

	var rows []record.Record
	apiErr := new(apiError)

	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(queryParams(schema, query)).
		SetResult(&rows).
		SetError(apiErr).
		Get("/" + string(collection))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", collection, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("data api error: status=%d, code=%s, message=%s", resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	g.logger.Debug("data api rows received", zap.String("collection", string(collection)), zap.Int("rows", len(rows)))
	return rows, nil
}

func queryParams(s repository.Schema, q repository.Query) map[string][]string {
	params := map[string][]string{"select": {"*"}}
	for _, f := range q.Filters {
		params[f.Field] = append(params[f.Field], "eq."+f.Value)
	}
	if q.Since != nil {
		params[s.DateField] = append(params[s.DateField], "gte."+q.Since.UTC().Format(time.RFC3339))
	}
	if q.Until != nil {
		params[s.DateField] = append(params[s.DateField], "lte."+q.Until.UTC().Format(time.RFC3339))
	}
	if q.NewestFirst && s.DateField != "" {
		params["order"] = []string{s.DateField + ".desc.nullslast"}
	}
	if q.Limit > 0 {
		params["limit"] = []string{strconv.Itoa(q.Limit)}
	}
	return params
}
