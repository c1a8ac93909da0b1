package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/repricer/internal/claimmodel"
)

// LineRow is one row destined for repricing.repriced_lines, pairing a
// priced line with the batch run and claim it belongs to.
type LineRow struct {
	BatchRunID uuid.UUID
	ClaimID    string
	Line       claimmodel.RepricedLine
}

// LineColumns returns the repricing.repriced_lines column order that
// ChannelSource.Values must match.
func LineColumns() []string {
	return []string{
		"batch_run_id", "claim_id", "line_number", "service_type",
		"procedure_code", "ms_drg_code", "medicare_allowed", "mppr_rank",
		"has_fatal_error", "diagnostic_codes",
	}
}

func (r *LineRow) copyValues() []any {
	var mpprRank *int
	if r.Line.MPPRRank > 0 {
		rank := r.Line.MPPRRank
		mpprRank = &rank
	}
	var procedureCode, msDRGCode *string
	if r.Line.ProcedureCode != "" {
		procedureCode = &r.Line.ProcedureCode
	}
	if r.Line.MSDRGCode != "" {
		msDRGCode = &r.Line.MSDRGCode
	}
	codes := make([]string, 0, len(r.Line.Diagnostics))
	for _, d := range r.Line.Diagnostics {
		codes = append(codes, d.Code)
	}
	return []any{
		r.BatchRunID, r.ClaimID, r.Line.LineNumber, r.Line.ServiceType,
		procedureCode, msDRGCode, r.Line.MedicareAllowed, mpprRank,
		r.Line.HasFatalError(), codes,
	}
}

// ChannelSource implements pgx.CopyFromSource by reading LineRows from a
// channel. This provides natural backpressure between the goroutine that
// feeds rows and the COPY writer, mirroring the teacher's staging-row copy
// source.
type ChannelSource struct {
	ch      <-chan *LineRow
	current *LineRow
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource(ch <-chan *LineRow) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current.copyValues(), nil
}

// Err returns any error encountered during iteration. ChannelSource never
// produces one itself; a failing producer should close the channel and
// surface its error through the caller's own error path.
func (s *ChannelSource) Err() error {
	return nil
}

// Compile-time check that ChannelSource satisfies the interface.
var _ pgx.CopyFromSource = (*ChannelSource)(nil)
