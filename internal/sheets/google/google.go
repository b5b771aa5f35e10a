// Package google mirrors monthly projections to a Google Spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "grana/internal/log"
	"grana/internal/projection"
	"grana/internal/sheets"
)

type Config struct {
	SpreadsheetID string
	// SheetBase is the sheet name prefix; owner 7 is written to
	// "<SheetBase>-7". The sheets must already exist in the spreadsheet.
	SheetBase       string
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var _ sheets.ProjectionWriter = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetBase := strings.TrimSpace(cfg.SheetBase)
	if sheetBase == "" {
		sheetBase = "Projections"
	}

	credentialsJSON, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

func resolveCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials")
}

// WriteMonthlyProjection clears the owner's sheet and writes the projection
// as one header row plus one row per month.
func (c *Client) WriteMonthlyProjection(ctx context.Context, ownerID int64, months []projection.MonthProjection) error {
	sheetName := fmt.Sprintf("%s-%d", c.sheetBase, ownerID)
	clearRange := fmt.Sprintf("%s!A:E", sheetName)

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheetName, err)
	}

	values := make([][]any, 0, len(months)+1)
	values = append(values, []any{"Month", "Year", "FixedExpenses", "Installments", "ProjectedTotal"})
	for _, m := range months {
		values = append(values, []any{m.Month, m.Year, m.Fixed, m.Installments, m.Total})
	}

	dataRange := fmt.Sprintf("%s!A1:E%d", sheetName, len(values))
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", sheetName, err)
	}

	applog.FromContext(ctx).Info("Projection mirrored to spreadsheet",
		applog.FieldOwnerID, ownerID,
		applog.FieldSheetName, sheetName,
		"rows", len(values))
	return nil
}
