package handler

import (
	"encoding/json"
	"net/http"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"attendance.service/internal/export"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// AdminPasswordHeader carries the shared admin secret on gated requests.
const AdminPasswordHeader = "X-Admin-Password"

type LedgerHandler struct {
	Ledger *core.LedgerService
	Guard  *core.CredentialGuard
}

type logAttendanceRequest struct {
	StaffID string `json:"staffId"`
}

type logAttendanceResponse struct {
	Result      model.LogResult `json:"result"`
	StaffID     string          `json:"staffId"`
	Name        string          `json:"name,omitempty"`
	Late        bool            `json:"late"`
	MinutesLate int             `json:"minutesLate"`
}

type staffRequest struct {
	StaffID    string `json:"staffId"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

type rotatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// LogAttendance is the kiosk entry point: a staff member presents an id and
// the ledger decides between sign-in, sign-out and no-op.
func (h *LedgerHandler) LogAttendance(w http.ResponseWriter, r *http.Request) {
	var req logAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !core.ValidateStaffID(req.StaffID) {
		http.Error(w, "A valid staffId is required", http.StatusBadRequest)
		return
	}

	outcome, err := h.Ledger.LogAttendance(r.Context(), req.StaffID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("staff_id", req.StaffID).Msg("Failed to log attendance")
		http.Error(w, "Service error processing event", http.StatusInternalServerError)
		return
	}

	if outcome.Result == model.ResultRejected {
		writeJSON(w, http.StatusNotFound, logAttendanceResponse{Result: outcome.Result, StaffID: req.StaffID})
		return
	}

	// The confirmation message shows the display name, so fetch it for the
	// response. A lookup failure here is not worth failing the event over.
	resp := logAttendanceResponse{
		Result:      outcome.Result,
		StaffID:     req.StaffID,
		Late:        outcome.Late,
		MinutesLate: outcome.MinutesLate,
	}
	if staff, err := h.Ledger.GetStaff(r.Context(), req.StaffID); err == nil && staff != nil {
		resp.Name = staff.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

// RegisterStaff adds a roster entry. All fields are required; duplicates
// come back as 409 without touching the existing record.
func (h *LedgerHandler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !core.ValidateStaffID(req.StaffID) {
		http.Error(w, "A valid staffId is required", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Department == "" {
		http.Error(w, "name and department are required", http.StatusBadRequest)
		return
	}

	ok, err := h.Ledger.RegisterStaff(r.Context(), req.StaffID, req.Name, req.Department)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("staff_id", req.StaffID).Msg("Failed to register staff")
		http.Error(w, "Service error registering staff", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Staff ID already registered", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"staffId": req.StaffID})
}

// GetStaff returns one roster entry.
func (h *LedgerHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staffId"]
	if !core.ValidateStaffID(staffID) {
		http.Error(w, "A valid staffId is required", http.StatusBadRequest)
		return
	}

	staff, err := h.Ledger.GetStaff(r.Context(), staffID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("staff_id", staffID).Msg("Failed to get staff")
		http.Error(w, "Service error fetching staff", http.StatusInternalServerError)
		return
	}
	if staff == nil {
		http.Error(w, "Staff not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// UpdateStaff changes name and department for an existing entry.
func (h *LedgerHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staffId"]
	if !core.ValidateStaffID(staffID) {
		http.Error(w, "A valid staffId is required", http.StatusBadRequest)
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Department == "" {
		http.Error(w, "name and department are required", http.StatusBadRequest)
		return
	}

	ok, err := h.Ledger.UpdateStaff(r.Context(), staffID, req.Name, req.Department)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("staff_id", staffID).Msg("Failed to update staff")
		http.Error(w, "Service error updating staff", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Staff not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteStaff removes a roster entry. Attendance history is retained.
func (h *LedgerHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staffId"]
	if !core.ValidateStaffID(staffID) {
		http.Error(w, "A valid staffId is required", http.StatusBadRequest)
		return
	}

	if err := h.Ledger.DeleteStaff(r.Context(), staffID); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("staff_id", staffID).Msg("Failed to delete staff")
		http.Error(w, "Service error deleting staff", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStaff returns the roster, name ascending.
func (h *LedgerHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Ledger.ListStaff(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list staff")
		http.Error(w, "Service error listing staff", http.StatusInternalServerError)
		return
	}
	if staff == nil {
		staff = []model.Staff{}
	}
	writeJSON(w, http.StatusOK, staff)
}

// ListAttendance returns the full attendance history, newest sign-in first.
func (h *LedgerHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Ledger.ListAttendance(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list attendance")
		http.Error(w, "Service error listing attendance", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.AttendanceEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ExportAttendance streams the attendance history as a CSV download.
func (h *LedgerHandler) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Ledger.ListAttendance(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list attendance for export")
		http.Error(w, "Service error exporting attendance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := export.WriteAttendanceCSV(w, entries); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write attendance csv")
	}
}

// RotatePassword replaces the admin credential. The gate middleware has
// already checked the current one.
func (h *LedgerHandler) RotatePassword(w http.ResponseWriter, r *http.Request) {
	var req rotatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewPassword == "" {
		http.Error(w, "newPassword is required", http.StatusBadRequest)
		return
	}

	if err := h.Guard.Rotate(req.NewPassword); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to rotate admin credential")
		http.Error(w, "Service error rotating credential", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequireAdmin wraps a handler with the credential check. The presented
// password travels in the X-Admin-Password header.
func (h *LedgerHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := h.Guard.Verify(r.Header.Get(AdminPasswordHeader))
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Credential verification failed")
			http.Error(w, "Credential store unavailable", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "Invalid admin password", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
