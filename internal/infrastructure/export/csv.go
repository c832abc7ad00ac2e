package export

import (
	"fmt"
	"io"
	"time"

	domain "tradechart/internal/domain/entity/marketdata"
	"tradechart/internal/domain/interfaces"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Record is one CSV row of the enriched trade set.
type Record struct {
	Symbol    string          `csv:"symbol"`
	LocalTime time.Time       `csv:"local_time"`
	Price     decimal.Decimal `csv:"price"`
	VWAP      decimal.Decimal `csv:"vwap"`
	Size      int64           `csv:"size"`
	Note      string          `csv:"note"`
}

// CSVExporter writes enriched trades as CSV with the note column rendered
// by the configured policy.
type CSVExporter struct {
	policy domain.NotePolicy
}

var _ interfaces.Exporter = (*CSVExporter)(nil)

func NewCSVExporter(policy domain.NotePolicy) *CSVExporter {
	if policy == "" {
		policy = domain.NotePolicyJoin
	}
	return &CSVExporter{policy: policy}
}

func (e *CSVExporter) Export(w io.Writer, trades []domain.EnrichedTrade) error {
	records := make([]Record, 0, len(trades))
	for i := range trades {
		records = append(records, Record{
			Symbol:    trades[i].Symbol,
			LocalTime: trades[i].LocalTime,
			Price:     trades[i].Price,
			VWAP:      trades[i].VWAP,
			Size:      trades[i].Size,
			Note:      e.policy.Format(trades[i].Labels),
		})
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadRecords parses CSV written by Export.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Labels parses the note column back into a label set.
func (r Record) Labels(policy domain.NotePolicy) (domain.LabelSet, error) {
	return policy.Parse(r.Note)
}
