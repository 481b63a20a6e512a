package model

import (
	"time"
)

// LogResult is the outcome of a single log-attendance event.
type LogResult string

const (
	// ResultSignIn means the first event of the day opened a new record.
	ResultSignIn LogResult = "SIGN_IN"
	// ResultSignOut means the second event of the day closed the record.
	ResultSignOut LogResult = "SIGN_OUT"
	// ResultAlreadySignedOut means the record was already closed; nothing changed.
	ResultAlreadySignedOut LogResult = "ALREADY_SIGNED_OUT"
	// ResultRejected means the staff id does not resolve to a roster entry.
	ResultRejected LogResult = "REJECTED"
)

// LogOutcome is what a log-attendance event produced. Late and MinutesLate
// are only meaningful on a sign-in; an arrival past the lateness threshold
// by under a minute reports Late with MinutesLate zero.
type LogOutcome struct {
	Result      LogResult
	Late        bool
	MinutesLate int
}

// Staff is one roster entry. StaffID is the caller-supplied primary key.
type Staff struct {
	StaffID    string    `json:"staffId"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Attendance is the at-most-one daily record per (staff_id, date).
// TimeOut and TimestampOut stay nil until the sign-out event.
type Attendance struct {
	ID           int64      `json:"id"`
	StaffID      string     `json:"staffId"`
	Date         string     `json:"date"`    // YYYY-MM-DD
	TimeIn       *string    `json:"timeIn"`  // HH:MM:SS
	TimeOut      *string    `json:"timeOut"` // HH:MM:SS
	TimestampIn  *time.Time `json:"timestampIn"`
	TimestampOut *time.Time `json:"timestampOut"`
}

// AttendanceEntry is one row of the attendance listing, joined against the
// roster. Name and Department come back empty when the staff row has been
// deleted since the record was logged.
type AttendanceEntry struct {
	StaffID    string `json:"staffId"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Date       string `json:"date"`
	TimeIn     string `json:"timeIn"`
	TimeOut    string `json:"timeOut"`
}
