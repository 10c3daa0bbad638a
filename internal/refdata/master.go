package refdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kabudata/tachibana-adapter/pkg/model"
)

// MasterSource yields the full instrument universe for a master refresh.
type MasterSource interface {
	Instruments(ctx context.Context) ([]model.Instrument, error)
}

// FileMasterSource reads the exchange's issue list export as CSV. Expected
// header: code, name, market_product_category, sector33_code,
// sector33_category, sector17_code, sector17_category, scale_code,
// scale_category. A literal "-" cell means no value.
type FileMasterSource struct {
	Path string
}

func (f FileMasterSource) Instruments(_ context.Context) ([]model.Instrument, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open master file: %w", err)
	}
	defer file.Close()
	return parseMasterCSV(file)
}

func parseMasterCSV(r io.Reader) ([]model.Instrument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 9

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read master header: %w", err)
	}
	if strings.TrimSpace(header[0]) != "code" {
		return nil, fmt.Errorf("unexpected master header %q", header[0])
	}

	var out []model.Instrument
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read master row: %w", err)
		}
		in := model.Instrument{
			Code:             strings.TrimSpace(rec[0]),
			Name:             normalizeName(strings.TrimSpace(rec[1])),
			Segment:          NormalizeSegment(rec[2]),
			Sector33Code:     cell(rec[3]),
			Sector33Category: cell(rec[4]),
			Sector17Code:     cell(rec[5]),
			Sector17Category: cell(rec[6]),
			ScaleCode:        cell(rec[7]),
			ScaleCategory:    cell(rec[8]),
		}
		if in.Code == "" {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// cell converts a CSV cell to a nullable value. "-" is the source's marker
// for no data.
func cell(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	return &s
}
