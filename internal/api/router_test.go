package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"attendance.service/internal/api"
	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/credential"
	"attendance.service/internal/ports/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	guard := core.NewCredentialGuard(credential.NewMemoryStore())
	if err := guard.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	ledger := core.NewLedgerService(repository.NewMemory())

	srv := httptest.NewServer(api.NewRouter(ledger, guard))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body, adminPassword string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if adminPassword != "" {
		req.Header.Set("X-Admin-Password", adminPassword)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestKioskFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/staff",
		`{"staffId":"A1","name":"Amina Bello","department":"Finance"}`, "admin")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Sign in.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/attendance", `{"staffId":"A1"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign-in status = %d", resp.StatusCode)
	}
	var got struct {
		Result      model.LogResult `json:"result"`
		Name        string          `json:"name"`
		Late        *bool           `json:"late"`
		MinutesLate *int            `json:"minutesLate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if got.Result != model.ResultSignIn || got.Name != "Amina Bello" {
		t.Fatalf("sign-in response = %+v", got)
	}
	// The kiosk shows a lateness message on sign-in, so the response always
	// carries both fields.
	if got.Late == nil || got.MinutesLate == nil {
		t.Fatalf("sign-in response missing lateness fields: %+v", got)
	}

	// Sign out.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/attendance", `{"staffId":"A1"}`, "")
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Result != model.ResultSignOut {
		t.Fatalf("second event = %s", got.Result)
	}

	// Idempotent third event.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/attendance", `{"staffId":"A1"}`, "")
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Result != model.ResultAlreadySignedOut {
		t.Fatalf("third event = %s", got.Result)
	}
}

func TestKioskRejectsUnknownAndMalformedIDs(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/attendance", `{"staffId":"GHOST"}`, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown staff status = %d, want 404", resp.StatusCode)
	}
	var got struct {
		Result model.LogResult `json:"result"`
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Result != model.ResultRejected {
		t.Fatalf("result = %s, want %s", got.Result, model.ResultRejected)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/attendance", `{"staffId":"bad id!"}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminGate(t *testing.T) {
	srv := newTestServer(t)

	// Wrong password.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/staff", "", "letmein")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing header.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/attendance", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	// Default credential works on a fresh install.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/staff", "", "admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("default password status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRotatePassword(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/admin/password", `{"newPassword":"newpass"}`, "admin")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("rotate status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/staff", "", "admin")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password still works after rotation: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/staff", "", "newpass")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new password rejected after rotation: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStaffCRUDAndDuplicate(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/staff",
		`{"staffId":"B2","name":"Musa Ibrahim","department":"Ops"}`, "admin")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/staff",
		`{"staffId":"B2","name":"Other","department":"Other"}`, "admin")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/staff/B2",
		`{"name":"Musa A. Ibrahim","department":"Finance"}`, "admin")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/staff/B2", "", "admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var staff model.Staff
	json.NewDecoder(resp.Body).Decode(&staff)
	resp.Body.Close()
	if staff.Name != "Musa A. Ibrahim" || staff.Department != "Finance" {
		t.Fatalf("staff after update = %+v", staff)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/staff/B2", "", "admin")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/staff/B2", "", "admin")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStaffPathIDValidated(t *testing.T) {
	srv := newTestServer(t)

	// Dashes are URL-safe but not valid in a staff id, so these reach the
	// handlers and must be rejected there.
	for _, tc := range []struct{ method, body string }{
		{http.MethodGet, ""},
		{http.MethodPut, `{"name":"Name","department":"Ops"}`},
		{http.MethodDelete, ""},
	} {
		resp := doJSON(t, tc.method, srv.URL+"/api/v1/staff/bad-id", tc.body, "admin")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s with malformed path id status = %d, want 400", tc.method, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestExportAttendanceCSV(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/staff",
		`{"staffId":"A1","name":"Amina Bello","department":"Finance"}`, "admin")
	resp.Body.Close()
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/attendance", `{"staffId":"A1"}`, "")
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/attendance/export", "", "admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %s", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if lines[0] != "Staff ID,Name,Department,Date,Time In,Time Out" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "A1,Amina Bello,Finance,") {
		t.Fatalf("rows = %q", lines[1:])
	}
	if !strings.HasSuffix(lines[1], ",") {
		t.Fatalf("open record should end with empty Time Out: %q", lines[1])
	}
}
