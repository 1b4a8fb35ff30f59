package parser

import (
	"bytes"
	"testing"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SHEET_NAME)
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(SHEET_NAME, axis, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestResultsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsXlsx(&buf, competition.SeedBoard().All()))

	resp, err := ParseResultsXlsx(&buf)
	require.NoError(t, err)
	require.Empty(t, resp.Errs)
	require.Equal(t, competition.SeedBoard().All(), resp.Results)
}

func TestParseAcceptsIdsAndTitles(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Rank", "Name", "Category", "Score"},
		{1, "Zaid Ahmed", "hifz-5", "97,5"},
		{2, "Maryam Ali", "Tilawah (Recitation)", 91},
		{},
		{"x", "Broken Rank", "hifz-5", 80},
	})

	resp, err := ParseResultsXlsx(buf)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Equal(t, competition.Result{Rank: 1, Name: "Zaid Ahmed", Category: competition.HIFZ_5, Score: 97.5}, resp.Results[0])
	require.Equal(t, competition.TILAWAH, resp.Results[1].Category)
	require.Len(t, resp.Errs, 1)
	require.Equal(t, 33, resp.PercentErrs)
}

func TestParseRejectsMostlyBrokenSheet(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Rank", "Name", "Category", "Score"},
		{1, "A", "hifz-3", 90},
		{2, "B", "hifz-5", 900},
		{3, "C", "hifz-5", 80},
	})

	_, err := ParseResultsXlsx(buf)
	require.ErrorIs(t, err, ErrTooManyErrs)
}

func TestParseRejectsMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ParseResultsXlsx(&buf)
	require.Error(t, err)
}
