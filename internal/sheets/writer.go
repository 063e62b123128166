package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/service"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

// ReportWriter exports a report somewhere outside the ledger.
type ReportWriter interface {
	Write(ctx context.Context, r *Report) error
}

// Writer exports reports into a single Google Sheets spreadsheet.
type Writer struct {
	api    *sheets.Service
	logger *slog.Logger
	config Config
}

var _ ReportWriter = (*Writer)(nil)

// NewWriter validates config and connects to the Sheets API.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	srv, err := newService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	return &Writer{api: srv, logger: logger, config: config}, nil
}

// SpreadsheetID returns the target spreadsheet, empty until one is created.
func (w *Writer) SpreadsheetID() string {
	return w.config.SpreadsheetID
}

// Write replaces the sheet contents with r. Each API step is retried on
// quota and server errors; a formatting failure only logs a warning.
func (w *Writer) Write(ctx context.Context, r *Report) error {
	if r == nil || r.Dashboard == nil {
		return fmt.Errorf("%w: empty report", common.ErrInvalidField)
	}

	id, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	w.config.SpreadsheetID = id

	values := prepareValues(r)
	w.logger.Info("exporting report",
		"spreadsheet_id", id,
		"range", r.Dashboard.Range.String(),
		"transactions", len(r.Transactions))

	if err := w.step(ctx, func() error { return w.clearSheet(ctx, id) }); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}
	if err := w.step(ctx, func() error { return w.writeData(ctx, id, values) }); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		format := func() error { return w.applyFormatting(ctx, id, len(values), r.Dashboard.Currency) }
		if err := w.step(ctx, format); err != nil {
			w.logger.Warn("could not format sheet", "error", err)
		}
	}

	w.logger.Info("report exported", "spreadsheet_id", id, "rows", len(values))
	return nil
}

func (w *Writer) step(ctx context.Context, call func() error) error {
	opts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	return common.WithRetry(ctx, func() error { return classifyAPIError(call()) }, opts)
}

// classifyAPIError marks quota and server failures as retryable and
// everything else the API rejects as permanent.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return common.Transient(fmt.Errorf("%w: %w", common.ErrRateLimit, err))
	case apiErr.Code >= http.StatusInternalServerError:
		return common.Transient(err)
	default:
		return common.Permanent(err)
	}
}

// reportSheet titles the tab of a new spreadsheet. Rows always go to the
// first tab, so an existing spreadsheet may name it anything.
const reportSheet = "Report"

// getOrCreateSpreadsheet checks the configured spreadsheet is reachable, or
// creates a fresh one when none is configured.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if id := w.config.SpreadsheetID; id != "" {
		if _, err := w.api.Spreadsheets.Get(id).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("spreadsheet %s: %w", id, err)
		}
		return id, nil
	}

	created, err := w.api.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: w.config.SpreadsheetName, TimeZone: w.config.TimeZone},
		Sheets:     []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: reportSheet}}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}

	w.logger.Info("created spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, id string) error {
	_, err := w.api.Spreadsheets.Values.Clear(id, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *Writer) writeData(ctx context.Context, id string, values [][]any) error {
	for _, b := range batches(len(values), w.config.BatchSize) {
		cell := fmt.Sprintf("A%d", b.start+1)
		call := w.api.Spreadsheets.Values.Update(id, cell, &sheets.ValueRange{Values: values[b.start:b.end]})
		if _, err := call.ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return fmt.Errorf("rows %d-%d: %w", b.start+1, b.end, err)
		}
		w.logger.Debug("wrote rows", "from", b.start+1, "to", b.end)
	}
	return nil
}

type batch struct {
	start, end int
}

func batches(total, size int) []batch {
	if size <= 0 {
		size = total
	}
	var out []batch
	for i := 0; i < total; i += size {
		out = append(out, batch{start: i, end: min(i+size, total)})
	}
	return out
}

func formattingRequests(totalRows int, currency string) []*sheets.Request {
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{EndRowIndex: 1, EndColumnIndex: 2},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{StartRowIndex: 2, EndRowIndex: int64(totalRows), EndColumnIndex: 1},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					StartRowIndex:    2,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: amountColumn,
					EndColumnIndex:   amountColumn + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: currencyPattern(currency)},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					Dimension: "COLUMNS",
					EndIndex:  int64(len(transactionHeader)),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int, currency string) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formattingRequests(totalRows, currency),
	}
	_, err := w.api.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}
