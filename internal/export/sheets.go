// Package export publishes portal tables to Google Sheets.
package export

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"fragportal/internal/stats"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var leaderboardHeader = []interface{}{
	"Player", "Maps", "Maps Won", "Kills", "Assists", "Deaths", "K/D", "ADR", "Headshots %",
}

// LeaderboardRows renders careers as a header row plus one row per player,
// in the order given.
func LeaderboardRows(careers []stats.PlayerCareer) [][]interface{} {
	rows := make([][]interface{}, 0, len(careers)+1)
	rows = append(rows, leaderboardHeader)
	for _, c := range careers {
		rows = append(rows, []interface{}{
			c.Nickname, c.Maps, c.MapsWon, c.Kills, c.Assists, c.Deaths,
			stats.FormatKD(c.KD), c.ADR, c.Headshots,
		})
	}
	return rows
}

type Exporter interface {
	Upload(ctx context.Context, rows [][]interface{}) error
}

type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	tab           string
}

// NewSheetsExporter authenticates with a service account key file and
// targets one tab of the spreadsheet behind sheetURL.
func NewSheetsExporter(ctx context.Context, credentialsFile, sheetURL, tab string) (*SheetsExporter, error) {
	credentials, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	config, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, err
	}
	return &SheetsExporter{service: srv, spreadsheetID: spreadsheetID, tab: tab}, nil
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("could not extract spreadsheet ID from URL: %s", url)
	}
	return matches[1], nil
}

// Upload replaces the content of the tab with rows.
func (e *SheetsExporter) Upload(ctx context.Context, rows [][]interface{}) error {
	clearRange := fmt.Sprintf("%s!A:Z", e.tab)
	if _, err := e.service.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	_, err := e.service.Spreadsheets.Values.Update(e.spreadsheetID, fmt.Sprintf("%s!A1", e.tab), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheet: %w", err)
	}
	return nil
}
