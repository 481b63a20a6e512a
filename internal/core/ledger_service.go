package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

// Arrivals strictly after 08:30 local time count as late.
const (
	lateThresholdHour   = 8
	lateThresholdMinute = 30
)

// lateBy reports whether a sign-in at t is a late arrival and by how many
// whole minutes.
func lateBy(t time.Time) (bool, int) {
	threshold := time.Date(t.Year(), t.Month(), t.Day(),
		lateThresholdHour, lateThresholdMinute, 0, 0, t.Location())
	if !t.After(threshold) {
		return false, 0
	}
	return true, int(t.Sub(threshold) / time.Minute)
}

// LedgerService owns the staff roster and the daily attendance records.
type LedgerService struct {
	repo repository.Repository
	now  func() time.Time
}

// NewLedgerService creates the ledger, wiring up the storage repository.
func NewLedgerService(repo repository.Repository) *LedgerService {
	return &LedgerService{
		repo: repo,
		now:  time.Now,
	}
}

// RegisterStaff inserts a new roster entry with created_at set once, now.
// Returns false without mutation when the staff id is already taken. Empty
// field validation is the caller's job; the ledger does not re-check it.
func (s *LedgerService) RegisterStaff(ctx context.Context, staffID, name, department string) (bool, error) {
	err := s.repo.CreateStaff(ctx, model.Staff{
		StaffID:    staffID,
		Name:       name,
		Department: department,
		CreatedAt:  s.now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create staff record: %w", err)
	}
	return true, nil
}

// GetStaff looks up one roster entry. Returns (nil, nil) when absent.
func (s *LedgerService) GetStaff(ctx context.Context, staffID string) (*model.Staff, error) {
	return s.repo.GetStaff(ctx, staffID)
}

// UpdateStaff changes name and department in place; created_at is untouched.
// Returns false when the staff id does not exist.
func (s *LedgerService) UpdateStaff(ctx context.Context, staffID, name, department string) (bool, error) {
	ok, err := s.repo.UpdateStaff(ctx, staffID, name, department)
	if err != nil {
		return false, fmt.Errorf("failed to update staff record: %w", err)
	}
	return ok, nil
}

// DeleteStaff removes the roster entry only. Attendance history for the id
// is retained; listings degrade to empty display fields for it.
func (s *LedgerService) DeleteStaff(ctx context.Context, staffID string) error {
	if err := s.repo.DeleteStaff(ctx, staffID); err != nil {
		return fmt.Errorf("failed to delete staff record: %w", err)
	}
	return nil
}

// LogAttendance applies one attendance event for the staff member, following
// the per-day state machine: no record yet opens one (sign-in), an open
// record closes (sign-out), a closed record stays as it is. Unknown staff
// ids are rejected without touching the store. A sign-in past the lateness
// threshold reports how late the arrival was.
//
// "Today" is the wall-clock date at the moment of the call, so a session
// that crosses midnight starts a fresh record on the next event.
func (s *LedgerService) LogAttendance(ctx context.Context, staffID string) (model.LogOutcome, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.staffId", staffID))

	staff, err := s.repo.GetStaff(ctx, staffID)
	if err != nil {
		return model.LogOutcome{}, fmt.Errorf("failed to look up staff: %w", err)
	}
	if staff == nil {
		return model.LogOutcome{Result: model.ResultRejected}, nil
	}

	now := s.now()
	date := now.Format(dateLayout)
	clock := now.Format(clockLayout)

	record, err := s.repo.GetDailyRecord(ctx, staffID, date)
	if err != nil {
		return model.LogOutcome{}, fmt.Errorf("failed to read daily record: %w", err)
	}

	if record == nil {
		err := s.repo.CreateSignIn(ctx, staffID, date, clock, now)
		if err == nil {
			late, minutes := lateBy(now)
			return model.LogOutcome{Result: model.ResultSignIn, Late: late, MinutesLate: minutes}, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return model.LogOutcome{}, fmt.Errorf("failed to create sign-in record: %w", err)
		}

		// Lost an insert race for today's record: another call signed in
		// first. Re-read and continue from the state it left behind.
		log.Ctx(ctx).Debug().Str("staff_id", staffID).Msg("Sign-in race lost, re-reading daily record")
		record, err = s.repo.GetDailyRecord(ctx, staffID, date)
		if err != nil {
			return model.LogOutcome{}, fmt.Errorf("failed to re-read daily record: %w", err)
		}
		if record == nil {
			return model.LogOutcome{}, fmt.Errorf("daily record missing after duplicate sign-in for staff %s", staffID)
		}
	}

	if record.TimeOut == nil {
		if err := s.repo.SetSignOut(ctx, record.ID, clock, now); err != nil {
			return model.LogOutcome{}, fmt.Errorf("failed to set sign-out: %w", err)
		}
		return model.LogOutcome{Result: model.ResultSignOut}, nil
	}

	// Third and later events for the day are idempotent no-ops.
	return model.LogOutcome{Result: model.ResultAlreadySignedOut}, nil
}

// DailyAttendanceCount reports the number of attendance records for the
// staff member on the given YYYY-MM-DD date. Zero when none.
func (s *LedgerService) DailyAttendanceCount(ctx context.Context, staffID, date string) (int, error) {
	return s.repo.CountDailyRecords(ctx, staffID, date)
}

// ListAttendance returns the complete attendance history, newest sign-in
// first, joined against the roster.
func (s *LedgerService) ListAttendance(ctx context.Context) ([]model.AttendanceEntry, error) {
	return s.repo.ListAttendance(ctx)
}

// ListStaff returns the roster sorted by name.
func (s *LedgerService) ListStaff(ctx context.Context) ([]model.Staff, error) {
	return s.repo.ListStaff(ctx)
}
