package backend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/common"
	"github.com/jo-hoe/gotransform/internal/core"
	"github.com/labstack/echo/v4"
)

const messagePhotoNotFound = "Photo not found"

// APIService serves the JSON photo API under /api/photos.
type APIService struct {
	coreService *core.CoreService
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	photos := e.Group("/api/photos")
	photos.GET("", s.listPhotosHandler)
	photos.POST("", s.createPhotoHandler)
	photos.GET("/:id", s.getPhotoHandler)
	photos.PATCH("/:id", s.updatePhotoHandler)
	photos.DELETE("/:id", s.deletePhotoHandler)
}

func (s *APIService) listPhotosHandler(ctx echo.Context) error {
	photos, err := s.coreService.ListPhotos(ctx.Request().Context(), core.PhotoFilter{})
	if err != nil {
		return internalError("listPhotosHandler", "Failed to fetch photos", err)
	}
	return ctx.JSON(http.StatusOK, photos)
}

func (s *APIService) getPhotoHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	photo, err := s.coreService.GetPhoto(ctx.Request().Context(), id)
	if errors.Is(err, database.ErrPhotoNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, messagePhotoNotFound)
	}
	if err != nil {
		return internalError("getPhotoHandler", "Failed to fetch photo", err, "photo_id", id)
	}
	return ctx.JSON(http.StatusOK, photo)
}

func (s *APIService) createPhotoHandler(ctx echo.Context) error {
	var request createPhotoRequest
	if err := bindAndValidate(ctx, &request); err != nil {
		return err
	}
	input, issues := request.toNewPhoto()
	if len(issues) > 0 {
		return common.NewValidationError(issues...)
	}

	photo, err := s.coreService.CreatePhoto(ctx.Request().Context(), input)
	if err != nil {
		return internalError("createPhotoHandler", "Failed to create photo", err)
	}
	return ctx.JSON(http.StatusCreated, photo)
}

func (s *APIService) updatePhotoHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	var request updatePhotoRequest
	if err := bindAndValidate(ctx, &request); err != nil {
		return err
	}
	update, issues := request.toPhotoUpdate()
	if len(issues) > 0 {
		return common.NewValidationError(issues...)
	}

	photo, err := s.coreService.UpdatePhoto(ctx.Request().Context(), id, update)
	if errors.Is(err, database.ErrPhotoNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, messagePhotoNotFound)
	}
	if err != nil {
		return internalError("updatePhotoHandler", "Failed to update photo", err, "photo_id", id)
	}
	return ctx.JSON(http.StatusOK, photo)
}

func (s *APIService) deletePhotoHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	deleted, err := s.coreService.DeletePhoto(ctx.Request().Context(), id)
	if err != nil {
		return internalError("deletePhotoHandler", "Failed to delete photo", err, "photo_id", id)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, messagePhotoNotFound)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// bindAndValidate decodes the JSON body and runs struct validation. Malformed
// JSON is reported in the same shape as field validation failures.
func bindAndValidate(ctx echo.Context, request any) error {
	if err := ctx.Bind(request); err != nil {
		issue := common.FieldIssue{Path: []string{}, Code: "invalid_json", Message: "request body is not valid JSON"}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			issue = common.FieldIssue{Path: []string{typeErr.Field}, Code: "invalid_type", Message: typeErr.Field + " has the wrong type"}
		}
		slog.Warn("bindAndValidate: failed to bind request body", "status", http.StatusBadRequest, "error", err)
		return common.NewValidationError(issue)
	}
	return ctx.Validate(request)
}

// internalError logs the cause and returns a generic 500 without details.
func internalError(handler, message string, err error, attrs ...any) *echo.HTTPError {
	slog.Error(handler+": "+message, append([]any{"status", http.StatusInternalServerError, "error", err}, attrs...)...)
	return echo.NewHTTPError(http.StatusInternalServerError, message)
}
