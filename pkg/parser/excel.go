package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/xuri/excelize/v2"
)

const (
	SHEET_NAME             = "Results"
	COUNT_OF_METAINFO_ROWS = 1
	MAX_ROWS               = 1500

	// Constants for parser protection
	MAX_LEN_OF_ROW                         = 10 // row length is counted in cells
	COUNTS_OF_LONG_ROWS_BEFORE_BLOCK_EXCEL = 10
	MAX_PERCENT_ERRS                       = 50

	COL_RANK     = 0
	COL_NAME     = 1
	COL_CATEGORY = 2
	COL_SCORE    = 3
)

var (
	ErrTooManyRows = errors.New("results workbook has too many rows")
	ErrSpam        = errors.New("results workbook has too many long rows")
	ErrTooManyErrs = errors.New("too many rows of the results workbook are broken")
)

var header = []string{"Rank", "Name", "Category", "Score"}

type Response struct {
	Results     []competition.Result
	PercentErrs int
	Errs        []error
}

// ParseResultsXlsx reads the "Results" sheet: one header row, then
// Rank | Name | Category | Score per row. Category is an id or a title.
func ParseResultsXlsx(r io.Reader) (*Response, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenReader failed: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SHEET_NAME)
	if err != nil {
		return nil, fmt.Errorf("f.GetRows failed: %w", err)
	}

	if len(rows) > MAX_ROWS {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, len(rows), MAX_ROWS)
	}

	resp, err := resultsParser(rows)
	if err != nil {
		return nil, fmt.Errorf("resultsParser failed: %w", err)
	}
	if resp.PercentErrs > MAX_PERCENT_ERRS {
		return resp, fmt.Errorf("%w: %d%%", ErrTooManyErrs, resp.PercentErrs)
	}
	return resp, nil
}

func resultsParser(arr [][]string) (*Response, error) {
	resp := &Response{Results: make([]competition.Result, 0, len(arr))}
	countOfEmptyRows := 0
	countOfVeryLongRows := 0

	for i, row := range arr {
		if i < COUNT_OF_METAINFO_ROWS {
			continue
		}

		if isEmptyRow(row) {
			countOfEmptyRows++
			continue
		}

		// Long rows every now and then are fine, many of them are spam.
		if len(row) > MAX_LEN_OF_ROW {
			countOfVeryLongRows++
			if countOfVeryLongRows > COUNTS_OF_LONG_ROWS_BEFORE_BLOCK_EXCEL {
				return nil, ErrSpam
			}
		}

		res, err := rowConverter(row)
		if err != nil {
			resp.Errs = append(resp.Errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		resp.Results = append(resp.Results, res)
	}

	total := len(arr) - COUNT_OF_METAINFO_ROWS - countOfEmptyRows
	if total > 0 {
		resp.PercentErrs = len(resp.Errs) * 100 / total
	}

	return resp, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func rowConverter(row []string) (competition.Result, error) {
	rank, err := strconv.Atoi(cell(row, COL_RANK))
	if err != nil || rank < 1 {
		return competition.Result{}, fmt.Errorf("bad rank %q", cell(row, COL_RANK))
	}

	name := cell(row, COL_NAME)
	if name == "" {
		return competition.Result{}, errors.New("empty name")
	}

	cat, ok := categoryOf(cell(row, COL_CATEGORY))
	if !ok {
		return competition.Result{}, fmt.Errorf("unknown category %q", cell(row, COL_CATEGORY))
	}

	score, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, COL_SCORE), ",", "."), 64)
	if err != nil || score < 0 || score > 100 {
		return competition.Result{}, fmt.Errorf("bad score %q", cell(row, COL_SCORE))
	}

	return competition.Result{Rank: rank, Name: name, Category: cat, Score: score}, nil
}

func categoryOf(s string) (string, bool) {
	if c, ok := competition.CategoryByID(strings.ToLower(s)); ok {
		return c.ID, true
	}
	for _, c := range competition.Categories() {
		if strings.EqualFold(c.Title, s) {
			return c.ID, true
		}
	}
	return "", false
}

// WriteResultsXlsx writes results in the layout ParseResultsXlsx reads.
func WriteResultsXlsx(w io.Writer, results []competition.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SHEET_NAME)

	if err := f.SetSheetRow(SHEET_NAME, "A1", &header); err != nil {
		return fmt.Errorf("f.SetSheetRow failed: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("f.NewStyle failed: %w", err)
	}
	if err := f.SetCellStyle(SHEET_NAME, "A1", "D1", bold); err != nil {
		return fmt.Errorf("f.SetCellStyle failed: %w", err)
	}
	if err := f.SetColWidth(SHEET_NAME, "B", "C", 28); err != nil {
		return fmt.Errorf("f.SetColWidth failed: %w", err)
	}

	for i, r := range results {
		axis, err := excelize.CoordinatesToCellName(1, i+1+COUNT_OF_METAINFO_ROWS)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName failed: %w", err)
		}
		row := []interface{}{r.Rank, r.Name, competition.CategoryTitle(r.Category), r.Score}
		if err := f.SetSheetRow(SHEET_NAME, axis, &row); err != nil {
			return fmt.Errorf("f.SetSheetRow failed: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("f.Write failed: %w", err)
	}
	return nil
}
