package export

import (
	"bytes"
	"testing"

	"attendance.service/internal/core/model"
)

func TestWriteAttendanceCSV(t *testing.T) {
	entries := []model.AttendanceEntry{
		{StaffID: "A1", Name: "Amina Bello", Department: "Finance", Date: "2024-03-04", TimeIn: "08:05:00", TimeOut: "17:02:00"},
		// Still signed in: time_out renders as an empty field.
		{StaffID: "B2", Name: "Musa Ibrahim", Department: "Ops", Date: "2024-03-04", TimeIn: "08:30:00"},
		// Staff deleted after logging: display fields are empty, row stays.
		{StaffID: "GONE", Date: "2024-03-03", TimeIn: "09:00:00", TimeOut: "16:45:00"},
	}

	var buf bytes.Buffer
	if err := WriteAttendanceCSV(&buf, entries); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "Staff ID,Name,Department,Date,Time In,Time Out\n" +
		"A1,Amina Bello,Finance,2024-03-04,08:05:00,17:02:00\n" +
		"B2,Musa Ibrahim,Ops,2024-03-04,08:30:00,\n" +
		"GONE,,,2024-03-03,09:00:00,16:45:00\n"
	if buf.String() != want {
		t.Fatalf("csv output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteAttendanceCSVEmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAttendanceCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := "Staff ID,Name,Department,Date,Time In,Time Out\n"
	if buf.String() != want {
		t.Fatalf("csv output for empty ledger:\n%s", buf.String())
	}
}
