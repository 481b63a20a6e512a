package repository

import (
	"context"
	"errors"
	"time"

	"attendance.service/internal/core/model"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint:
// an existing staff id on registration, or the (staff_id, date) key when
// two sign-in attempts race for the same day.
var ErrDuplicate = errors.New("record already exists")

// Repository contract for the attendance ledger's persistent store.
type Repository interface {
	CreateStaff(ctx context.Context, staff model.Staff) error
	GetStaff(ctx context.Context, staffID string) (*model.Staff, error)
	UpdateStaff(ctx context.Context, staffID, name, department string) (bool, error)
	DeleteStaff(ctx context.Context, staffID string) error

	GetDailyRecord(ctx context.Context, staffID, date string) (*model.Attendance, error)
	CreateSignIn(ctx context.Context, staffID, date, timeIn string, timestampIn time.Time) error
	SetSignOut(ctx context.Context, id int64, timeOut string, timestampOut time.Time) error
	CountDailyRecords(ctx context.Context, staffID, date string) (int, error)

	ListAttendance(ctx context.Context) ([]model.AttendanceEntry, error)
	ListStaff(ctx context.Context) ([]model.Staff, error)
}
