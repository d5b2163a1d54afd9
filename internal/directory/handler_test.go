package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"AutoShed/internal/config"
)

func setupTestHandler() (*echo.Echo, *DirectoryHandler, *mockStore) {
	e := echo.New()
	e.Validator = config.NewRequestValidator()
	store := newMockStore()
	return e, NewDirectoryHandler(NewDirectoryService(store)), store
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateExaminerHandler_ValidationFailureLeavesStoreUntouched(t *testing.T) {
	e, h, store := setupTestHandler()

	c, rec := postJSON(e, "/api/examiners", `{"name":"Dr. Silva","email":"not-an-email","department":"CS"}`)
	if err := h.CreateExaminer(c); err != nil {
		t.Fatalf("CreateExaminer: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	dec := json.NewDecoder(rec.Body)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := dec.Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if dec.More() {
		t.Fatalf("response contains more than one JSON document: %s", rec.Body.String())
	}
	if body.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", body.Error, "validation failed")
	}
	if _, ok := body.Fields["email"]; !ok {
		t.Fatalf("fields = %v, want an entry for email", body.Fields)
	}
	if len(store.examiners) != 0 {
		t.Fatalf("store holds %d examiners after a rejected create", len(store.examiners))
	}
}

func TestUpdateStudentHandler_ValidationFailureKeepsStoredStudent(t *testing.T) {
	e, h, store := setupTestHandler()

	seeded, err := NewDirectoryService(store).CreateStudent(context.Background(),
		StudentRequest{StudentID: "IT21001", Name: "Nimal", Email: "nimal@uni.edu", Program: "IT"})
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}

	c, rec := postJSON(e, "/api/students/"+seeded.ID.Hex(), `{"studentId":"IT21001","name":"","email":"nimal@uni.edu","program":"IT"}`)
	c.SetParamNames("id")
	c.SetParamValues(seeded.ID.Hex())
	if err := h.UpdateStudent(c); err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	stored := store.students[seeded.ID]
	if stored == nil || stored.Name != "Nimal" {
		t.Fatalf("stored student changed after a rejected update: %+v", stored)
	}
}
