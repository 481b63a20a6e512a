package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"attendance.service/internal/core/model"
)

// Memory is an in-process Repository with the same contract as the Postgres
// implementation, including ErrDuplicate on key collisions. It backs tests
// and local experiments that do not need a running database.
type Memory struct {
	mu         sync.Mutex
	staff      map[string]model.Staff
	attendance []model.Attendance
	nextID     int64
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		staff:  make(map[string]model.Staff),
		nextID: 1,
	}
}

func (m *Memory) CreateStaff(_ context.Context, staff model.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.staff[staff.StaffID]; ok {
		return ErrDuplicate
	}
	m.staff[staff.StaffID] = staff
	return nil
}

func (m *Memory) GetStaff(_ context.Context, staffID string) (*model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.staff[staffID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) UpdateStaff(_ context.Context, staffID, name, department string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.staff[staffID]
	if !ok {
		return false, nil
	}
	s.Name = name
	s.Department = department
	m.staff[staffID] = s
	return true, nil
}

func (m *Memory) DeleteStaff(_ context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Attendance rows survive on purpose; only the roster entry goes.
	delete(m.staff, staffID)
	return nil
}

func (m *Memory) GetDailyRecord(_ context.Context, staffID, date string) (*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.attendance {
		if m.attendance[i].StaffID == staffID && m.attendance[i].Date == date {
			rec := m.attendance[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateSignIn(_ context.Context, staffID, date, timeIn string, timestampIn time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.attendance {
		if m.attendance[i].StaffID == staffID && m.attendance[i].Date == date {
			return ErrDuplicate
		}
	}
	ts := timestampIn
	ti := timeIn
	m.attendance = append(m.attendance, model.Attendance{
		ID:          m.nextID,
		StaffID:     staffID,
		Date:        date,
		TimeIn:      &ti,
		TimestampIn: &ts,
	})
	m.nextID++
	return nil
}

func (m *Memory) SetSignOut(_ context.Context, id int64, timeOut string, timestampOut time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.attendance {
		if m.attendance[i].ID == id && m.attendance[i].TimeOut == nil {
			to := timeOut
			ts := timestampOut
			m.attendance[i].TimeOut = &to
			m.attendance[i].TimestampOut = &ts
		}
	}
	return nil
}

func (m *Memory) CountDailyRecords(_ context.Context, staffID, date string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for i := range m.attendance {
		if m.attendance[i].StaffID == staffID && m.attendance[i].Date == date {
			count++
		}
	}
	return count, nil
}

func (m *Memory) ListAttendance(_ context.Context) ([]model.AttendanceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]model.Attendance, len(m.attendance))
	copy(records, m.attendance)
	sort.SliceStable(records, func(i, j int) bool {
		var ti, tj time.Time
		if records[i].TimestampIn != nil {
			ti = *records[i].TimestampIn
		}
		if records[j].TimestampIn != nil {
			tj = *records[j].TimestampIn
		}
		return ti.After(tj)
	})

	var entries []model.AttendanceEntry
	for _, rec := range records {
		e := model.AttendanceEntry{
			StaffID: rec.StaffID,
			Date:    rec.Date,
		}
		if s, ok := m.staff[rec.StaffID]; ok {
			e.Name = s.Name
			e.Department = s.Department
		}
		if rec.TimeIn != nil {
			e.TimeIn = *rec.TimeIn
		}
		if rec.TimeOut != nil {
			e.TimeOut = *rec.TimeOut
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (m *Memory) ListStaff(_ context.Context) ([]model.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var staff []model.Staff
	for _, s := range m.staff {
		staff = append(staff, s)
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].Name < staff[j].Name })
	return staff, nil
}
