// Package sheets logs submissions as rows of a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/hexsyn/intake/internal/google"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
)

// NewService creates a Sheets API client from service account credentials
func NewService(ctx context.Context, credentials []byte) (*sheets.Service, error) {
	client, err := google.NewHTTPClient(ctx, credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}
	return svc, nil
}

// RowLogger appends submissions to per-kind sheets of one spreadsheet.
// Sheets and header rows are created on first use.
type RowLogger struct {
	svc           *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	log           *logger.Logger

	mu       sync.Mutex
	prepared map[string]bool
}

// NewRowLogger creates a RowLogger. appendsPerSecond <= 0 disables pacing.
func NewRowLogger(svc *sheets.Service, spreadsheetID string, appendsPerSecond float64, log *logger.Logger) *RowLogger {
	limit := rate.Inf
	if appendsPerSecond > 0 {
		limit = rate.Limit(appendsPerSecond)
	}
	return &RowLogger{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(limit, int(math.Max(1, math.Ceil(appendsPerSecond)))),
		log:           log.WithComponent("sheets"),
		prepared:      make(map[string]bool),
	}
}

// Append writes sub as a new row of its kind's sheet
func (r *RowLogger) Append(ctx context.Context, sub *model.Submission) error {
	l, ok := layouts[sub.Kind]
	if !ok {
		return fmt.Errorf("sheets: no layout for kind %q", sub.Kind)
	}

	if err := r.prepare(ctx, l); err != nil {
		return err
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sheets: waiting for append slot: %w", err)
	}

	resp, err := r.svc.Spreadsheets.Values.Append(r.spreadsheetID, columnRange(l.sheet, "A:A"), &sheets.ValueRange{
		Values: [][]any{l.row(sub)},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append to %s: %w", l.sheet, err)
	}

	updated := int64(0)
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRows
	}
	r.log.Debug().
		Str("sheet", l.sheet).
		Str("submission_id", sub.ID.String()).
		Int64("updated_rows", updated).
		Msg("Row appended")
	return nil
}

// Setup creates every sheet and header row up front
func (r *RowLogger) Setup(ctx context.Context) error {
	for _, kind := range model.Kinds {
		if err := r.prepare(ctx, layouts[kind]); err != nil {
			return err
		}
	}
	return nil
}

// Verify checks that the spreadsheet is reachable with the configured account
func (r *RowLogger) Verify(ctx context.Context) (string, error) {
	ss, err := r.svc.Spreadsheets.Get(r.spreadsheetID).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets: open spreadsheet: %w", err)
	}
	return ss.Properties.Title, nil
}

func (r *RowLogger) prepare(ctx context.Context, l layout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.prepared[l.sheet] {
		return nil
	}

	sheetID, err := r.ensureSheet(ctx, l.sheet)
	if err != nil {
		return err
	}
	if err := r.ensureHeaders(ctx, sheetID, l); err != nil {
		return err
	}

	r.prepared[l.sheet] = true
	return nil
}

func (r *RowLogger) ensureSheet(ctx context.Context, title string) (int64, error) {
	ss, err := r.svc.Spreadsheets.Get(r.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: list sheets: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := r.svc.Spreadsheets.BatchUpdate(r.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: create sheet %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("sheets: create sheet %s: empty reply", title)
	}

	r.log.Info().Str("sheet", title).Msg("Created sheet")
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (r *RowLogger) ensureHeaders(ctx context.Context, sheetID int64, l layout) error {
	existing, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, columnRange(l.sheet, "1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read headers of %s: %w", l.sheet, err)
	}
	if len(existing.Values) > 0 {
		return nil
	}

	headers := make([]any, len(l.headers))
	for i, h := range l.headers {
		headers[i] = h
	}
	_, err = r.svc.Spreadsheets.Values.Update(r.spreadsheetID, columnRange(l.sheet, "A1"), &sheets.ValueRange{
		Values: [][]any{headers},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: write headers of %s: %w", l.sheet, err)
	}

	_, err = r.svc.Spreadsheets.BatchUpdate(r.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   int64(len(l.headers)),
						ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat:      &sheets.TextFormat{Bold: true},
							BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
						},
					},
					Fields: "userEnteredFormat(textFormat,backgroundColor)",
				},
			},
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:         sheetID,
						GridProperties:  &sheets.GridProperties{FrozenRowCount: 1},
						ForceSendFields: []string{"SheetId"},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		// Headers are written; formatting is cosmetic.
		r.log.Warn().Err(err).Str("sheet", l.sheet).Msg("Failed to format header row")
	}

	r.log.Info().Str("sheet", l.sheet).Msg("Wrote header row")
	return nil
}

// columnRange builds an A1 range, quoting the sheet name
func columnRange(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", sheet, cells)
}
