package scheduling

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"AutoShed/internal/auth"
	"AutoShed/internal/config"
)

// SchedulingHandler handles HTTP requests for bookings and presentations.
type SchedulingHandler struct {
	service *SchedulingService
}

func NewSchedulingHandler(service *SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{service: service}
}

func requestActor(c echo.Context) Actor {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return Actor{}
	}
	return Actor{Email: claims.Email, Role: claims.Role}
}

func respondError(c echo.Context, err error) error {
	switch err := err.(type) {
	case *ConflictError:
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
	}
	switch err {
	case ErrNotFound:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Record not found"})
	case ErrForbidden:
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// bindAndValidate reports whether req was bound and validated. On failure it
// writes the 400 response itself; callers must return err without touching
// the service.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": config.FieldErrors(err),
		})
	}
	return true, nil
}

func pathID(c echo.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	return id, err == nil
}

// Booking endpoints

func (h *SchedulingHandler) CreateBooking(c echo.Context) error {
	var req BookingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), req, requestActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *SchedulingHandler) GetBooking(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	b, err := h.service.GetBooking(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *SchedulingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.service.ListBookings(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

func (h *SchedulingHandler) UpdateBooking(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	var req BookingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	b, err := h.service.UpdateBooking(c.Request().Context(), id, req, requestActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *SchedulingHandler) DeleteBooking(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	if err := h.service.DeleteBooking(c.Request().Context(), id, requestActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Booking deleted successfully"})
}

// Presentation endpoints

func (h *SchedulingHandler) CreatePresentation(c echo.Context) error {
	var req PresentationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.service.CreatePresentation(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *SchedulingHandler) GetPresentation(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	p, err := h.service.GetPresentation(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SchedulingHandler) ListPresentations(c echo.Context) error {
	presentations, err := h.service.ListPresentations(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, presentations)
}

func (h *SchedulingHandler) Reschedule(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	var req RescheduleRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	p, err := h.service.Reschedule(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SchedulingHandler) DeletePresentation(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	if err := h.service.DeletePresentation(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Presentation deleted successfully"})
}
