// Package fetch loads the three input tables (active roster, monthly
// separations, rotation matrix) as untyped row sets. A failing row source is
// the one unrecoverable input problem; everything downstream degrades
// instead of failing.
package fetch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"rotabot/internal/domain"
)

// RowSource produces the raw rows of one input table.
type RowSource interface {
	// Name identifies the source in logs and in the alias-mapping origin.
	Name() string
	// Rows returns header-keyed rows. Every header appears in every row;
	// cells that are empty in the source carry nil. Column mapping is
	// resolved from the first row's headers, so omitting blank cells would
	// unbind a column for the whole batch.
	Rows() ([]domain.RawRecord, error)
}

// CSVFile is a RowSource over a spreadsheet export saved as CSV.
type CSVFile struct {
	Path   string
	Source string
}

func (c CSVFile) Name() string { return c.Source }

func (c CSVFile) Rows() ([]domain.RawRecord, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s input: %w", c.Source, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s headers: %w", c.Source, err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []domain.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", c.Source, len(rows)+2, err)
		}
		rec := domain.RawRecord{}
		for i, h := range headers {
			var val string
			if i < len(row) {
				val = strings.TrimSpace(row[i])
			}
			if val == "" {
				rec[h] = nil
			} else {
				rec[h] = val
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// Inputs bundles the three tables of one run.
type Inputs struct {
	Activo []domain.RawRecord
	Bajas  []domain.RawRecord
	Matriz []domain.RawRecord
}

// LoadAll reads the three sources concurrently. Any source error aborts the
// run; the first one encountered (in activo, bajas, matriz order) is
// returned.
func LoadAll(activo, bajas, matriz RowSource) (Inputs, error) {
	var in Inputs
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); in.Activo, errs[0] = activo.Rows() }()
	go func() { defer wg.Done(); in.Bajas, errs[1] = bajas.Rows() }()
	go func() { defer wg.Done(); in.Matriz, errs[2] = matriz.Rows() }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Inputs{}, err
		}
	}
	return in, nil
}
