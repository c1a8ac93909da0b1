// Package export writes repriced-line results to Parquet for downstream
// analytics, the write-side counterpart of the teacher's parquetread
// (there: streaming read of hospital charge rows; here: batch write of
// priced-line rows).
package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/repricer/internal/claimmodel"
)

// LineRow is one flattened, Parquet-friendly repriced line.
type LineRow struct {
	ClaimID         string  `parquet:"claim_id"`
	PatientID       string  `parquet:"patient_id,optional"`
	LineNumber      int     `parquet:"line_number"`
	ServiceType     string  `parquet:"service_type"`
	ProcedureCode   string  `parquet:"procedure_code,optional"`
	MSDRGCode       string  `parquet:"ms_drg_code,optional"`
	MedicareAllowed float64 `parquet:"medicare_allowed"`
	MPPRRank        int     `parquet:"mppr_rank,optional"`
	HasFatalError   bool    `parquet:"has_fatal_error"`
}

func flatten(claims []*claimmodel.RepricedClaim) []LineRow {
	var rows []LineRow
	for _, c := range claims {
		if c == nil {
			continue
		}
		for _, l := range c.Lines {
			rows = append(rows, LineRow{
				ClaimID:         c.ClaimID,
				PatientID:       c.PatientID,
				LineNumber:      l.LineNumber,
				ServiceType:     l.ServiceType,
				ProcedureCode:   l.ProcedureCode,
				MSDRGCode:       l.MSDRGCode,
				MedicareAllowed: l.MedicareAllowed,
				MPPRRank:        l.MPPRRank,
				HasFatalError:   l.HasFatalError(),
			})
		}
	}
	return rows
}

// WriteParquet flattens a batch of repriced claims into one row per
// priced line and writes them to path as a single Parquet file.
func WriteParquet(path string, claims []*claimmodel.RepricedClaim) error {
	rows := flatten(claims)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[LineRow](f)
	if _, err := w.Write(rows); err != nil {
		w.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
