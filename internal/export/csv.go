package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"attendance.service/internal/core/model"
)

// attendanceHeader is the fixed export contract. Column order matches the
// attendance listing.
var attendanceHeader = []string{"Staff ID", "Name", "Department", "Date", "Time In", "Time Out"}

// WriteAttendanceCSV renders the attendance listing as CSV: one header row,
// one data row per record, missing values as empty strings, rows in the
// order the ledger returned them.
func WriteAttendanceCSV(w io.Writer, entries []model.AttendanceEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(attendanceHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{e.StaffID, e.Name, e.Department, e.Date, e.TimeIn, e.TimeOut}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
