package api

import (
	"net/http"

	"attendance.service/internal/api/handler"
	"attendance.service/internal/core"
	"github.com/gorilla/mux"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
// The attendance logging endpoint stays open for the kiosk flow; roster
// management, listings, export and credential rotation sit behind the
// admin gate.
func NewRouter(ledger *core.LedgerService, guard *core.CredentialGuard) *mux.Router {

	h := handler.LedgerHandler{
		Ledger: ledger,
		Guard:  guard,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/attendance", h.LogAttendance).Methods(http.MethodPost)

	api.HandleFunc("/attendance", h.RequireAdmin(h.ListAttendance)).Methods(http.MethodGet)
	api.HandleFunc("/attendance/export", h.RequireAdmin(h.ExportAttendance)).Methods(http.MethodGet)
	api.HandleFunc("/staff", h.RequireAdmin(h.RegisterStaff)).Methods(http.MethodPost)
	api.HandleFunc("/staff", h.RequireAdmin(h.ListStaff)).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}", h.RequireAdmin(h.GetStaff)).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}", h.RequireAdmin(h.UpdateStaff)).Methods(http.MethodPut)
	api.HandleFunc("/staff/{staffId}", h.RequireAdmin(h.DeleteStaff)).Methods(http.MethodDelete)
	api.HandleFunc("/admin/password", h.RequireAdmin(h.RotatePassword)).Methods(http.MethodPost)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
