package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kapu/carfinder-bot-go/internal/util"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
)

// Header aliases seen across dataset variants.
var (
	makeColumns  = []string{"make", "make name"}
	modelColumns = []string{"model", "model name"}
	yearColumns  = []string{"year", "trim year", "model year"}
)

// LoadFile reads records from a CSV file.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return records, nil
}

// ReadCSV parses a CSV stream with a header row. A missing make/model/year
// column fails the whole read; short rows produce records with empty fields
// that Build later skips.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ErrEmptyCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	makeIdx, err := columnIndex(header, "make", makeColumns)
	if err != nil {
		return nil, err
	}
	modelIdx, err := columnIndex(header, "model", modelColumns)
	if err != nil {
		return nil, err
	}
	yearIdx, err := columnIndex(header, "year", yearColumns)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, Record{
			Line:  line,
			Make:  field(row, makeIdx),
			Model: field(row, modelIdx),
			Year:  field(row, yearIdx),
		})
	}

	return records, nil
}

func columnIndex(header []string, name string, aliases []string) (int, error) {
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		if util.ContainsFold(aliases, col) {
			return i, nil
		}
	}
	return -1, errors.NewValidationError(
		fmt.Sprintf("catalog header has no %s column (accepted: %s)", name, strings.Join(aliases, ", ")),
		name, header,
	)
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
