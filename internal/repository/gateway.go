// Package repository defines the read-only Record Store Gateway contract, the
// collection schema shared by every backend and the typed Store facade the
// analytics engine consumes.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// ErrUnknownCollection indicates a query against a collection without a schema.
var ErrUnknownCollection = errors.New("unknown collection")

// ErrUnknownField indicates a filter on a field the collection does not expose.
var ErrUnknownField = errors.New("unknown field")

// Gateway supplies filtered, ordered record sets. Implementations never join;
// each call may fail or time out independently.
type Gateway interface {
	Fetch(ctx context.Context, collection Collection, query Query) ([]record.Record, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, collection Collection, query Query) ([]record.Record, error)

// Fetch calls f.
func (f GatewayFunc) Fetch(ctx context.Context, collection Collection, query Query) ([]record.Record, error) {
	return f(ctx, collection, query)
}

// Filter is an equality condition on a storage field.
type Filter struct {
	Field string
	Value string
}

// Query is the restricted read surface every backend supports: equality
// filters, an optional range on the collection date field, newest-first
// ordering and a limit (0 means unbounded).
type Query struct {
	Filters     []Filter
	Since       *time.Time
	Until       *time.Time
	NewestFirst bool
	Limit       int
}

// Where returns a copy of the query with an extra equality filter.
func (q Query) Where(field, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Latest returns a newest-first query bounded to n records.
func Latest(n int) Query {
	return Query{NewestFirst: true, Limit: n}
}

// Validate checks the query against the collection schema.
func (q Query) Validate(s Schema) error {
	for _, f := range q.Filters {
		if !s.HasField(f.Field) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Collection, f.Field)
		}
	}
	if (q.Since != nil || q.Until != nil) && s.DateField == "" {
		return fmt.Errorf("%w: %s has no date field for range filters", ErrUnknownField, s.Collection)
	}
	if q.Limit < 0 {
		return fmt.Errorf("negative limit %d", q.Limit)
	}
	return nil
}

// Key renders the query deterministically, for cache keys and logs.
func (q Query) Key() string {
	parts := make([]string, 0, len(q.Filters)+4)
	filters := append([]Filter(nil), q.Filters...)
	sort.Slice(filters, func(i, j int) bool {
		if filters[i].Field == filters[j].Field {
			return filters[i].Value < filters[j].Value
		}
		return filters[i].Field < filters[j].Field
	})
	for _, f := range filters {
		parts = append(parts, f.Field+"="+f.Value)
	}
	if q.Since != nil {
		parts = append(parts, "since="+q.Since.UTC().Format(time.RFC3339))
	}
	if q.Until != nil {
		parts = append(parts, "until="+q.Until.UTC().Format(time.RFC3339))
	}
	if q.NewestFirst {
		parts = append(parts, "order=desc")
	}
	if q.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", q.Limit))
	}
	return strings.Join(parts, "&")
}

// ApplyInMemory filters, orders and truncates records for backends that cannot
// push the query down (spreadsheets).
func ApplyInMemory(s Schema, rows []record.Record, q Query) []record.Record {
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		if matches(s, r, q) {
			out = append(out, r)
		}
	}

	if q.NewestFirst && s.DateField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			ti, okI := out[i].Time(s.DateField)
			tj, okJ := out[j].Time(s.DateField)
			switch {
			case okI && okJ:
				return ti.After(tj)
			case okI:
				return true
			default:
				return false
			}
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matches(s Schema, r record.Record, q Query) bool {
	for _, f := range q.Filters {
		if r.String(f.Field) != f.Value {
			return false
		}
	}
	if q.Since == nil && q.Until == nil {
		return true
	}
	t, ok := r.Time(s.DateField)
	if !ok {
		return false
	}
	if q.Since != nil && t.Before(*q.Since) {
		return false
	}
	if q.Until != nil && t.After(*q.Until) {
		return false
	}
	return true
}
