package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"attendance.service/internal/core/model"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LedgerRepository is the concrete implementation for a PostgreSQL database.
type LedgerRepository struct {
	DB *sql.DB
}

// NewLedgerRepository create new instance
func NewLedgerRepository(db *sql.DB) Repository {
	return &LedgerRepository{DB: db}
}

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateStaff inserts one roster entry. Returns ErrDuplicate when the staff
// id is already registered; the existing row is left untouched.
func (r *LedgerRepository) CreateStaff(ctx context.Context, staff model.Staff) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.staffId", staff.StaffID))

	query := `INSERT INTO staff (staff_id, name, department, created_at)
              VALUES ($1, $2, $3, $4)`

	_, err := r.DB.ExecContext(ctx, query, staff.StaffID, staff.Name, staff.Department, staff.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetStaff fetches a roster entry by id. Returns (nil, nil) when absent.
func (r *LedgerRepository) GetStaff(ctx context.Context, staffID string) (*model.Staff, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.staffId", staffID))

	s := &model.Staff{}
	query := `SELECT staff_id, name, department, created_at FROM staff WHERE staff_id = $1`

	row := r.DB.QueryRowContext(ctx, query, staffID)
	err := row.Scan(&s.StaffID, &s.Name, &s.Department, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateStaff mutates name and department in place. created_at is never
// touched. The bool reports whether a row matched.
func (r *LedgerRepository) UpdateStaff(ctx context.Context, staffID, name, department string) (bool, error) {
	query := `UPDATE staff SET name = $1, department = $2 WHERE staff_id = $3`

	res, err := r.DB.ExecContext(ctx, query, name, department, staffID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteStaff removes the roster row only. Attendance rows referencing the
// id are retained for audit history; reads degrade to empty display fields.
func (r *LedgerRepository) DeleteStaff(ctx context.Context, staffID string) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.staffId", staffID))

	_, err := r.DB.ExecContext(ctx, `DELETE FROM staff WHERE staff_id = $1`, staffID)
	return err
}

// GetDailyRecord fetches the single attendance record for (staff_id, date).
// Returns (nil, nil) when no event was logged that day.
func (r *LedgerRepository) GetDailyRecord(ctx context.Context, staffID, date string) (*model.Attendance, error) {
	a := &model.Attendance{}
	query := `SELECT id, staff_id, date, time_in, time_out, timestamp_in, timestamp_out
              FROM attendance
              WHERE staff_id = $1 AND date = $2`

	row := r.DB.QueryRowContext(ctx, query, staffID, date)
	err := row.Scan(&a.ID, &a.StaffID, &a.Date, &a.TimeIn, &a.TimeOut, &a.TimestampIn, &a.TimestampOut)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateSignIn opens the daily record. The UNIQUE(staff_id, date) constraint
// is the backstop against two concurrent callers both observing "no record":
// the loser gets ErrDuplicate and re-reads instead of inserting twice.
func (r *LedgerRepository) CreateSignIn(ctx context.Context, staffID, date, timeIn string, timestampIn time.Time) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.staffId", staffID))

	query := `INSERT INTO attendance (staff_id, date, time_in, timestamp_in)
              VALUES ($1, $2, $3, $4)`

	_, err := r.DB.ExecContext(ctx, query, staffID, date, timeIn, timestampIn)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// SetSignOut closes the daily record. The time_out IS NULL guard keeps the
// record immutable once closed, even if two sign-out attempts race.
func (r *LedgerRepository) SetSignOut(ctx context.Context, id int64, timeOut string, timestampOut time.Time) error {
	query := `UPDATE attendance
              SET time_out = $1,
                  timestamp_out = $2
              WHERE id = $3 AND time_out IS NULL`

	_, err := r.DB.ExecContext(ctx, query, timeOut, timestampOut, id)
	return err
}

// CountDailyRecords reports how many attendance rows exist for (staff_id, date).
// The schema caps this at one; the count is kept as a derived view, not a
// source of truth for the state machine.
func (r *LedgerRepository) CountDailyRecords(ctx context.Context, staffID, date string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendance WHERE staff_id = $1 AND date = $2`

	err := r.DB.QueryRowContext(ctx, query, staffID, date).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListAttendance returns every attendance record joined against the roster,
// newest sign-in first. The LEFT JOIN with COALESCE keeps rows for deleted
// staff readable with empty display fields.
func (r *LedgerRepository) ListAttendance(ctx context.Context) ([]model.AttendanceEntry, error) {
	query := `SELECT a.staff_id, COALESCE(s.name, ''), COALESCE(s.department, ''),
                     a.date, COALESCE(a.time_in, ''), COALESCE(a.time_out, '')
              FROM attendance a
              LEFT JOIN staff s ON a.staff_id = s.staff_id
              ORDER BY a.timestamp_in DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AttendanceEntry
	for rows.Next() {
		var e model.AttendanceEntry
		if err := rows.Scan(&e.StaffID, &e.Name, &e.Department, &e.Date, &e.TimeIn, &e.TimeOut); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListStaff returns the full roster sorted by display name.
func (r *LedgerRepository) ListStaff(ctx context.Context) ([]model.Staff, error) {
	query := `SELECT staff_id, name, department, created_at FROM staff ORDER BY name ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.StaffID, &s.Name, &s.Department, &s.CreatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}
