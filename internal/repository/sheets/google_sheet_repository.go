// Package sheets serves record reads from a Google Sheets workbook holding one
// tab per collection, with storage field names in the header row.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/ganadero/internal/config"
	"github.com/mamadbah2/ganadero/internal/repository"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// RangeReader fetches a rectangular data range from a spreadsheet.
type RangeReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetReader implements RangeReader using the official Google Sheets API.
type GoogleSheetReader struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleSheetReader builds a read-only Google Sheets client.
func NewGoogleSheetReader(ctx context.Context, cfg config.SheetsConfig) (*GoogleSheetReader, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetReader{service: service, spreadsheetID: cfg.SpreadsheetID}, nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetReader) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// Gateway implements repository.Gateway over spreadsheet tabs. Sheets cannot
// filter server-side, so queries are applied in memory.
type Gateway struct {
	reader RangeReader
	logger *zap.Logger
}

// NewGateway wraps a range reader.
func NewGateway(reader RangeReader, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{reader: reader, logger: logger}
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

	values, err := g.reader.ReadRange(ctx, tabRange(collection))
	if err != nil {
		return nil, err
	}

	rows := toRecords(values)
	g.logger.Debug("sheet rows read", zap.String("tab", string(collection)), zap.Int("rows", len(rows)))
	return repository.ApplyInMemory(schema, rows, query), nil
}

func tabRange(c repository.Collection) string {
	return fmt.Sprintf("%s!A:Z", c)
}

// toRecords maps every data row onto the header row. Blank rows are dropped;
// short rows leave trailing fields absent.
func toRecords(values [][]interface{}) []record.Record {
	if len(values) < 2 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.ToLower(strings.TrimSpace(fmt.Sprint(h)))
	}

	out := make([]record.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(record.Record, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			rec[header[i]] = cell
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out
}
