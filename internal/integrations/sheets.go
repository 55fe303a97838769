package integrations

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const (
	// SheetsAPITimeout bounds a single append call.
	SheetsAPITimeout = 10 * time.Second

	logRange   = "Sheet1!A:E"
	rowColumns = 5
)

// TaskRow is the task payload written to a sheet.
type TaskRow struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
}

type AppendUpdates struct {
	UpdatedRows    int64 `json:"updatedRows"`
	UpdatedColumns int64 `json:"updatedColumns"`
	UpdatedCells   int64 `json:"updatedCells"`
}

type AppendSummary struct {
	SpreadsheetID string        `json:"spreadsheetId"`
	Updates       AppendUpdates `json:"updates"`
}

// Sheets appends task rows. Without a service (no credentials configured)
// it returns the summary an append would have produced and calls nothing.
type Sheets struct {
	svc *sheets.Service
	now func() time.Time
}

// NewSheets loads service-account credentials from credentialsFile. An empty
// path yields an offline logger.
func NewSheets(ctx context.Context, credentialsFile string) (*Sheets, error) {
	if credentialsFile == "" {
		return &Sheets{now: time.Now}, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, creds.TokenSource)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Sheets{svc: svc, now: time.Now}, nil
}

// NewSheetsWithOptions builds a live logger from explicit client options (for testing).
func NewSheetsWithOptions(ctx context.Context, opts ...option.ClientOption) (*Sheets, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Sheets{svc: svc, now: time.Now}, nil
}

func (s *Sheets) Live() bool { return s.svc != nil }

func (s *Sheets) LogTask(ctx context.Context, sheetID string, row TaskRow) (AppendSummary, error) {
	if s.svc == nil {
		return AppendSummary{
			SpreadsheetID: sheetID,
			Updates:       AppendUpdates{UpdatedRows: 1, UpdatedColumns: rowColumns, UpdatedCells: rowColumns},
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, SheetsAPITimeout)
	defer cancel()

	values := &sheets.ValueRange{
		Values: [][]interface{}{{
			row.Title, row.Status, row.Priority, row.DueDate,
			s.now().UTC().Format(time.RFC3339),
		}},
	}
	resp, err := s.svc.Spreadsheets.Values.Append(sheetID, logRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return AppendSummary{}, fmt.Errorf("append row: %w", err)
	}

	out := AppendSummary{SpreadsheetID: resp.SpreadsheetId}
	if resp.Updates != nil {
		out.Updates = AppendUpdates{
			UpdatedRows:    resp.Updates.UpdatedRows,
			UpdatedColumns: resp.Updates.UpdatedColumns,
			UpdatedCells:   resp.Updates.UpdatedCells,
		}
	}
	return out, nil
}

// Check verifies the sheet is reachable. Offline loggers always pass.
func (s *Sheets) Check(ctx context.Context, sheetID string) error {
	if s.svc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, SheetsAPITimeout)
	defer cancel()
	if _, err := s.svc.Spreadsheets.Get(sheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}
