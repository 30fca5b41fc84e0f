package download

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"go.uber.org/zap"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
	"github.com/Renato-Rodrigues/ecemf-mc/export"
)

// DataRequest selects the time series written by Data.
type DataRequest struct {
	// FileName is the path prefix of the output files.
	FileName string
	// DB is the name of the scenario database.
	DB string

	Model    string
	Scenario string
	Region   string

	// SaveCSV additionally writes the long-format view to <FileName>.csv.
	SaveCSV bool
}

// Status is the outcome of a Data download.
type Status int

const (
	// StatusWritten means data was found and the files were written.
	StatusWritten Status = iota
	// StatusEmpty means the query succeeded but matched nothing; no file was written.
	StatusEmpty
	// StatusFailed means connecting, querying or writing failed; see Result.Err.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result reports what a Data download did.
type Result struct {
	Status Status
	// Rows is the number of observations written.
	Rows int
	// Files are the paths of the files written, in order.
	Files []string
	// Err is the reason of a StatusFailed outcome.
	Err error
}

// Data queries every variable of the model/scenario/region selection and writes
// <FileName>.xlsx, plus <FileName>.csv when SaveCSV is set.
//
// The spreadsheet has a "data" sheet with the wide view under IAMC headers
// (Model, Scenario, Region, Variable, Unit, years) and a "meta" sheet with the
// indicators of the default versions of the queried scenarios. The CSV keeps
// the lowercase long-format columns.
//
// Data never fails: errors and panics are reported in the returned Result with
// StatusFailed, and nothing is written when the query matches no data.
func (d *Downloader) Data(ctx context.Context, req DataRequest) (res *Result) {
	res = &Result{}
	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("panic: %v", r)
		}
		if res.Status == StatusFailed {
			d.logger.Warn("data download failed",
				zap.String("db", req.DB), zap.String("file", req.FileName), zap.Error(res.Err))
		}
	}()

	if err := d.data(ctx, req, res); err != nil {
		res.Status = StatusFailed
		res.Err = err
	}
	return res
}

func (d *Downloader) data(ctx context.Context, req DataRequest, res *Result) error {
	s, err := d.dial(ctx, req.DB)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer closeSession(s)

	ts, err := s.Query(ctx, &iiasa.QueryFilter{
		Model:    []string{req.Model},
		Scenario: []string{req.Scenario},
		Variable: []string{iiasa.Wildcard},
		Region:   []string{req.Region},
	})
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if ts.Len() == 0 {
		res.Status = StatusEmpty
		d.logger.Info("query returned no data", zap.String("db", req.DB),
			zap.String("model", req.Model), zap.String("scenario", req.Scenario), zap.String("region", req.Region))
		return nil
	}

	meta, err := s.Meta(ctx, true)
	if err != nil {
		return fmt.Errorf("meta: %w", err)
	}

	xlsx := req.FileName + ".xlsx"
	if err := export.WriteWorkbook(xlsx,
		export.Sheet{Name: DataSheet, Table: dataSheet(ts)},
		export.Sheet{Name: MetaSheet, Table: metaSheet(meta, ts)},
	); err != nil {
		return fmt.Errorf("write %s: %w", xlsx, err)
	}
	res.Files = append(res.Files, xlsx)

	if req.SaveCSV {
		csv := req.FileName + ".csv"
		rec := ts.Data(memory.DefaultAllocator)
		defer rec.Release()
		if err := export.WriteCSV(csv, rec); err != nil {
			return fmt.Errorf("write %s: %w", csv, err)
		}
		res.Files = append(res.Files, csv)
	}

	res.Status = StatusWritten
	res.Rows = ts.Len()
	d.logger.Info("wrote time series",
		zap.String("db", req.DB), zap.Strings("files", res.Files), zap.Int("rows", res.Rows))
	return nil
}
