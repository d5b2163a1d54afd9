package scheduling

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

func setupTestHandler() (*echo.Echo, *SchedulingHandler, *mockStore, *recordingSink) {
	e := echo.New()
	e.Validator = config.NewRequestValidator()
	svc, store, sink := setupTestService()
	return e, NewSchedulingHandler(svc), store, sink
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// decodeOneJSON fails if the recorder holds anything other than a single
// JSON document, which catches a second body written after the first.
func decodeOneJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	dec := json.NewDecoder(rec.Body)
	if err := dec.Decode(out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if dec.More() {
		t.Fatalf("response contains more than one JSON document: %s", rec.Body.String())
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func TestCreateBookingHandler_ValidationFailureLeavesStoreUntouched(t *testing.T) {
	e, h, store, sink := setupTestHandler()

	c, rec := postJSON(e, "/api/bookings", `{"examinerId":"EX1","date":"2025-06-01","time":"not-a-time"}`)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body errorBody
	decodeOneJSON(t, rec, &body)
	if body.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", body.Error, "validation failed")
	}
	if _, ok := body.Fields["time"]; !ok {
		t.Fatalf("fields = %v, want an entry for time", body.Fields)
	}
	if len(store.bookings) != 0 {
		t.Fatalf("store holds %d bookings after a rejected create", len(store.bookings))
	}
	if len(sink.events) != 0 {
		t.Fatalf("sink received %v after a rejected create", sink.events)
	}
}

func TestUpdateBookingHandler_ValidationFailureKeepsStoredBooking(t *testing.T) {
	e, h, store, sink := setupTestHandler()

	seeded, err := NewSchedulingService(store, sink).CreateBooking(context.Background(),
		BookingRequest{ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"}, examinerActor)
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	eventsBefore := len(sink.events)

	c, rec := postJSON(e, "/api/bookings/"+seeded.ID.Hex(), `{"examinerId":"EX1","date":"2025-13-99","time":"10:00"}`)
	c.SetParamNames("id")
	c.SetParamValues(seeded.ID.Hex())
	if err := h.UpdateBooking(c); err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	stored := store.bookings[seeded.ID]
	if stored == nil || stored.Date != "2025-06-01" {
		t.Fatalf("stored booking changed after a rejected update: %+v", stored)
	}
	if len(sink.events) != eventsBefore {
		t.Fatalf("sink received %v after a rejected update", sink.events[eventsBefore:])
	}
}

func TestCreatePresentationHandler_ValidationFailureLeavesStoreUntouched(t *testing.T) {
	e, h, store, _ := setupTestHandler()

	c, rec := postJSON(e, "/api/presentations", `{"groupId":"G1","examinerId":"EX1","date":"2025-06-01"}`)
	if err := h.CreatePresentation(c); err != nil {
		t.Fatalf("CreatePresentation: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body errorBody
	decodeOneJSON(t, rec, &body)
	if _, ok := body.Fields["time"]; !ok {
		t.Fatalf("fields = %v, want an entry for time", body.Fields)
	}
	if len(store.presentations) != 0 {
		t.Fatalf("store holds %d presentations after a rejected create", len(store.presentations))
	}
}

func TestRescheduleHandler_ValidationFailureKeepsStoredPresentation(t *testing.T) {
	e, h, store, sink := setupTestHandler()

	seeded, err := NewSchedulingService(store, sink).CreatePresentation(context.Background(),
		PresentationRequest{GroupID: "G1", ExaminerID: "EX1", Date: "2025-06-01", Time: "10:00"})
	if err != nil {
		t.Fatalf("seed presentation: %v", err)
	}
	eventsBefore := len(sink.events)

	c, rec := postJSON(e, "/api/presentations/"+seeded.ID.Hex()+"/reschedule", `{"date":"2025-06-02"}`)
	c.SetParamNames("id")
	c.SetParamValues(seeded.ID.Hex())
	if err := h.Reschedule(c); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	stored := store.presentations[seeded.ID]
	if stored == nil || stored.Date != "2025-06-01" || stored.Time != "10:00" {
		t.Fatalf("stored presentation changed after a rejected reschedule: %+v", stored)
	}
	if len(sink.events) != eventsBefore {
		t.Fatalf("sink received %v after a rejected reschedule", sink.events[eventsBefore:])
	}
}
