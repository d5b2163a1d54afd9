package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"AutoShed/internal/auth"
	"AutoShed/internal/config"
)

// NotificationHandler handles HTTP requests for notifications and notices.
type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func actorEmail(c echo.Context) string {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return ""
	}
	return claims.Email
}

func respondError(c echo.Context, err error) error {
	switch e := err.(type) {
	case *ValidationError:
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": e.Fields,
		})
	default:
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// CreateNotification allows admins to publish a new notification.
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": config.FieldErrors(err),
		})
	}

	n, err := h.service.CreateNotification(c.Request().Context(), req, actorEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": config.FieldErrors(err),
		})
	}

	n, err := h.service.UpdateNotification(c.Request().Context(), id, req, actorEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	notifications, err := h.service.ListNotifications(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetNotification fetches a single notification; each call counts one view.
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	n, err := h.service.GetNotification(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// ActiveCommon lists notifications currently visible to everyone.
func (h *NotificationHandler) ActiveCommon(c echo.Context) error {
	notifications, err := h.service.ActiveNotifications(c.Request().Context(), AudienceCommon)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// ActiveForAudience lists notifications currently visible to one audience.
func (h *NotificationHandler) ActiveForAudience(c echo.Context) error {
	notifications, err := h.service.ActiveNotifications(c.Request().Context(), c.Param("audience"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	if err := h.service.DeleteNotification(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification deleted successfully"})
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BulkDelete removes a batch of notifications; ids that do not exist are
// ignored rather than reported as partial failures.
func (h *NotificationHandler) BulkDelete(c echo.Context) error {
	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": config.FieldErrors(err),
		})
	}
	deleted, err := h.service.BulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"deleted": deleted})
}

func (h *NotificationHandler) StatsOverview(c echo.Context) error {
	stats, err := h.service.Overview(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Notice endpoints

func (h *NotificationHandler) CreateNotice(c echo.Context) error {
	var req NoticeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": config.FieldErrors(err),
		})
	}
	n, err := h.service.CreateNotice(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) UpdateNotice(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	var req NoticeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": config.FieldErrors(err),
		})
	}
	n, err := h.service.UpdateNotice(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) DeleteNotice(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	if err := h.service.DeleteNotice(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notice deleted successfully"})
}

func (h *NotificationHandler) ListNotices(c echo.Context) error {
	notices, err := h.service.ListNotices(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notices)
}

func (h *NotificationHandler) NoticesForAudience(c echo.Context) error {
	notices, err := h.service.NoticesForAudience(c.Request().Context(), c.Param("audience"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notices)
}

func (h *NotificationHandler) GetNotice(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	n, err := h.service.GetNotice(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}
