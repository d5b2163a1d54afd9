package directory

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"AutoShed/internal/config"
)

// DirectoryHandler handles HTTP requests for examiner and student records.
type DirectoryHandler struct {
	service *DirectoryService
}

func NewDirectoryHandler(service *DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func respondError(c echo.Context, err error) error {
	if err == ErrNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Record not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
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

func (h *DirectoryHandler) CreateExaminer(c echo.Context) error {
	var req ExaminerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	e, err := h.service.CreateExaminer(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *DirectoryHandler) GetExaminer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	e, err := h.service.GetExaminer(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *DirectoryHandler) ListExaminers(c echo.Context) error {
	examiners, err := h.service.ListExaminers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, examiners)
}

func (h *DirectoryHandler) UpdateExaminer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	var req ExaminerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	e, err := h.service.UpdateExaminer(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *DirectoryHandler) DeleteExaminer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	if err := h.service.DeleteExaminer(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Examiner deleted successfully"})
}

func (h *DirectoryHandler) CreateStudent(c echo.Context) error {
	var req StudentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.service.CreateStudent(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *DirectoryHandler) GetStudent(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	s, err := h.service.GetStudent(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *DirectoryHandler) ListStudents(c echo.Context) error {
	students, err := h.service.ListStudents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, students)
}

func (h *DirectoryHandler) UpdateStudent(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	var req StudentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.service.UpdateStudent(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *DirectoryHandler) DeleteStudent(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid id"})
	}
	if err := h.service.DeleteStudent(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}
