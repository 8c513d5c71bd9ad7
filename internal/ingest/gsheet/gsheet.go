// Package gsheet reads cost-allocation rows from a Google Spreadsheet so the
// import worker can pull the shared workbook directly instead of waiting for
// an .xlsx upload.
package gsheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tcoboard/internal/ingest"
)

// Client reads one range of a spreadsheet as raw header/data rows.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
}

var _ ingest.RowSource = (*Client)(nil)

// New builds a client for the given spreadsheet and A1-notation range. An
// empty range reads the whole first sheet.
func New(ctx context.Context, spreadsheetID, readRange string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if strings.TrimSpace(readRange) == "" {
		readRange = "A:Z"
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadRows implements ingest.RowSource. The first non-empty row of the range
// is treated as the header row.
func (c *Client) ReadRows(ctx context.Context) ([]string, [][]string, error) {
	if c.svc == nil {
		return nil, nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", c.readRange, err)
	}
	all := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		all = append(all, toStrings(row))
	}
	headers, rows := splitHeaderRow(all)
	return headers, rows, nil
}

// splitHeaderRow returns the first non-empty row as headers and everything
// after it as data rows. Sheets ranges often start above the real table, so
// leading blank rows are skipped rather than mistaken for a header.
func splitHeaderRow(all [][]string) ([]string, [][]string) {
	for i, row := range all {
		if !isEmptyRow(row) {
			return row, all[i+1:]
		}
	}
	return nil, nil
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
