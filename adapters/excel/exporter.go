package excel

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"leadtime/domain/work"
)

const (
	summarySheet  = "Summaries"
	evidenceSheet = "Evidence"
)

// Exporter writes an evidence document to an .xlsx workbook: one sheet
// of group summaries, one sheet of the raw evidence behind them.
type Exporter struct{}

// NewExporter creates a new exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders the document and saves the workbook at path
func (e *Exporter) Export(doc work.Document, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if _, err := f.NewSheet(evidenceSheet); err != nil {
		return fmt.Errorf("failed to create evidence sheet: %w", err)
	}

	if err := e.writeSummaries(f, doc); err != nil {
		return err
	}
	if err := e.writeEvidence(f, doc); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	log.Printf("[ExcelExporter] wrote %d groups to %s", doc.GroupCount(), path)
	return nil
}

func (e *Exporter) writeSummaries(f *excelize.File, doc work.Document) error {
	header := []interface{}{
		"Assignee", "Estimate", "Samples",
		"Dev Mean", "Dev Stddev", "Dev Median", "Dev Stderr", "Dev Conf Int",
		"Prod Mean", "Prod Stddev", "Prod Median", "Prod Stderr", "Prod Conf Int",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	row := 2
	for _, assignee := range doc.Assignees() {
		for _, estimate := range doc.Estimates(assignee) {
			s := doc[assignee][estimate]
			values := []interface{}{
				assignee, estimate, s.SampleSize(),
				s.DevDoneMean, s.DevDoneStddev, s.DevDoneMedian, s.DevDoneStderr, s.DevDoneConfInt,
				s.ProdDoneMean, s.ProdDoneStddev, s.ProdDoneMedian, s.ProdDoneStderr, s.ProdDoneConfInt,
			}
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write summary row %d: %w", row, err)
			}
			row++
		}
	}
	return nil
}

func (e *Exporter) writeEvidence(f *excelize.File, doc work.Document) error {
	header := []interface{}{
		"Item", "Assignee", "Estimate",
		"Dev Start", "Dev Done", "Prod Done",
		"Dev Workdays", "Prod Workdays",
	}
	if err := f.SetSheetRow(evidenceSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write evidence header: %w", err)
	}

	row := 2
	for _, assignee := range doc.Assignees() {
		for _, estimate := range doc.Estimates(assignee) {
			for _, item := range doc[assignee][estimate].Evidence {
				values := []interface{}{
					item.ID, item.Assignee, item.Estimate,
					item.DevStart.String(), item.DevDone.String(), item.ProdDone.String(),
					item.DevDoneWorkdays, item.ProdDoneWorkdays,
				}
				cell := fmt.Sprintf("A%d", row)
				if err := f.SetSheetRow(evidenceSheet, cell, &values); err != nil {
					return fmt.Errorf("failed to write evidence row %d: %w", row, err)
				}
				row++
			}
		}
	}
	return nil
}
