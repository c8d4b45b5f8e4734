package leave

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Leaves"

var exportHeader = []any{
	"ID", "Requester ID", "Work Site", "Department", "Leave Type",
	"Start Date", "End Date", "Total Days", "Reason", "Stage",
	"Comment", "Last Reviewed By", "Last Reviewed At", "Created At",
}

// buildWorkbook renders leaves into a single-sheet xlsx file.
func buildWorkbook(rows []LeaveResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{
			r.ID, r.RequesterID, r.WorkSiteID, r.DepartmentID, r.LeaveType,
			r.StartDate, r.EndDate, r.TotalDays, r.Reason, r.Stage,
			deref(r.Comment), deref(r.LastReviewedBy), deref(r.LastReviewedAt), r.CreatedAt,
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(exportSheet, "A", lastCol, 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
