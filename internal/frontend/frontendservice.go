package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/backend/video"
	"github.com/jo-hoe/gotransform/internal/common"
	"github.com/jo-hoe/gotransform/internal/core"
	"github.com/jo-hoe/gotransform/internal/stats"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName = "index.html"
	mimePNG      = "image/png"
	maxNotes     = 2000
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) error {
	renderer, err := newTemplate(service.config.DateLayout)
	if err != nil {
		return err
	}
	e.Renderer = renderer

	e.GET("/", service.rootRedirectHandler)
	e.GET("/"+MainPageName, service.indexHandler)

	e.GET("/htmx/gallery", service.htmxGalleryHandler)
	e.POST("/htmx/upload", service.htmxUploadHandler)
	e.DELETE("/htmx/photo/:id", service.htmxDeletePhotoHandler)
	e.GET("/htmx/photo/:id/thumb", service.htmxThumbnailHandler)
	e.GET("/photo/:id/image", service.photoImageHandler)

	e.GET("/htmx/compare", service.htmxCompareHandler)
	e.GET("/htmx/timeline", service.htmxTimelineHandler)

	e.POST("/htmx/video", service.htmxStartVideoHandler)
	e.GET("/htmx/video/:id", service.htmxVideoStatusHandler)
	e.GET("/video/:id", service.videoDownloadHandler)

	// Favicon (SVG) route
	e.GET("/icon.svg", service.iconHandler)
	return nil
}

type indexView struct {
	Photos         []*database.Photo
	Today          string
	DefaultSeconds float64
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	photos, err := service.coreService.ListPhotos(ctx.Request().Context(), core.PhotoFilter{})
	if err != nil {
		slog.Error("indexHandler: failed to list photos", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to fetch photos")
	}
	return ctx.Render(http.StatusOK, MainPageName, indexView{
		Photos:         photos,
		Today:          service.coreService.Now().Format("2006-01-02"),
		DefaultSeconds: service.config.Video.DefaultSecondsPerPhoto,
	})
}

type galleryCard struct {
	Photo  *database.Photo
	Change string
}

type galleryView struct {
	Cards  []galleryCard
	Filter core.PhotoFilter
}

func filterFromQuery(ctx echo.Context) core.PhotoFilter {
	period, err := strconv.Atoi(ctx.QueryParam("period"))
	if err != nil || period < 0 {
		period = 0
	}
	return core.PhotoFilter{
		Type:       strings.TrimSpace(ctx.QueryParam("type")),
		PeriodDays: period,
		Search:     ctx.QueryParam("q"),
	}
}

// buildGallery describes each weight relative to the earliest photo overall,
// not the earliest one left after filtering.
func (service *FrontendService) buildGallery(reqCtx context.Context, filter core.PhotoFilter) (galleryView, error) {
	all, err := service.coreService.ListPhotos(reqCtx, core.PhotoFilter{})
	if err != nil {
		return galleryView{}, err
	}
	initial := stats.InitialWeight(all)

	filtered := filter.Apply(all, service.coreService.Now())
	view := galleryView{Cards: make([]galleryCard, 0, len(filtered)), Filter: filter}
	for _, photo := range filtered {
		card := galleryCard{Photo: photo}
		if photo.Weight != nil && initial != nil {
			card.Change = stats.DescribeChange(*photo.Weight, *initial)
		}
		view.Cards = append(view.Cards, card)
	}
	return view, nil
}

func (service *FrontendService) htmxGalleryHandler(ctx echo.Context) error {
	view, err := service.buildGallery(ctx.Request().Context(), filterFromQuery(ctx))
	if err != nil {
		slog.Error("htmxGalleryHandler: failed to list photos", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to fetch photos")
	}
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "gallery", view)
}

type uploadView struct {
	Uploaded []string
	Error    string
	Gallery  galleryView
}

type uploadForm struct {
	date      string
	photoType string
	weight    string
	notes     string
	files     []*multipart.FileHeader
}

// metadata validates the shared form fields. The message is shown to the user
// when ok is false.
func (form uploadForm) metadata() (upload core.Upload, message string, ok bool) {
	date, err := common.ParseTimestamp(form.date)
	if err != nil {
		return core.Upload{}, "Please choose a valid date", false
	}
	photoType := database.PhotoType(form.photoType)
	if !photoType.Valid() {
		return core.Upload{}, "Please choose a photo type", false
	}
	upload = core.Upload{Date: date, Type: photoType}

	if raw := strings.TrimSpace(form.weight); raw != "" {
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || value <= 0 || value >= 1000 {
			return core.Upload{}, "Weight must be a number between 0 and 1000", false
		}
		value = math.Round(value*100) / 100
		upload.Weight = &value
	}
	if notes := strings.TrimSpace(form.notes); notes != "" {
		if len([]rune(notes)) > maxNotes {
			return core.Upload{}, fmt.Sprintf("Notes must be at most %d characters", maxNotes), false
		}
		upload.Notes = &notes
	}
	return upload, "", true
}

// htmxUploadHandler stores the selected files one after another in selection
// order. It stops at the first failure; photos stored before it are kept.
func (service *FrontendService) htmxUploadHandler(ctx echo.Context) error {
	multipartForm, err := ctx.MultipartForm()
	if err != nil {
		slog.Warn("htmxUploadHandler: failed to parse multipart form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read upload")
	}
	form := uploadForm{
		date:      ctx.FormValue("date"),
		photoType: ctx.FormValue("type"),
		weight:    ctx.FormValue("weight"),
		notes:     ctx.FormValue("notes"),
		files:     multipartForm.File["images"],
	}

	result := uploadView{}
	metadata, message, ok := form.metadata()
	switch {
	case !ok:
		result.Error = message
	case len(form.files) == 0:
		result.Error = "Please select at least one image"
	default:
		for _, file := range form.files {
			if err := service.uploadFile(ctx.Request().Context(), metadata, file); err != nil {
				slog.Error("htmxUploadHandler: failed to store uploaded file",
					"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
				result.Error = fmt.Sprintf("Failed to upload %s", file.Filename)
				break
			}
			result.Uploaded = append(result.Uploaded, file.Filename)
		}
	}

	gallery, err := service.buildGallery(ctx.Request().Context(), core.PhotoFilter{})
	if err != nil {
		slog.Error("htmxUploadHandler: failed to list photos for OOB update",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to fetch photos")
	}
	result.Gallery = gallery
	if len(result.Uploaded) > 0 {
		ctx.Response().Header().Set("HX-Trigger", "photos-changed")
	}
	return ctx.Render(http.StatusOK, "upload_result", result)
}

func (service *FrontendService) uploadFile(reqCtx context.Context, upload core.Upload, file *multipart.FileHeader) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("htmxUploadHandler: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read uploaded file: %w", err)
	}
	upload.Filename = file.Filename
	upload.Data = data
	_, err = service.coreService.UploadPhoto(reqCtx, upload)
	return err
}

func (service *FrontendService) htmxDeletePhotoHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	deleted, err := service.coreService.DeletePhoto(ctx.Request().Context(), id)
	if err != nil {
		slog.Error("htmxDeletePhotoHandler: failed to delete photo",
			"status", http.StatusInternalServerError, "photo_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to delete photo")
	}
	if !deleted {
		slog.Warn("htmxDeletePhotoHandler: photo not found", "status", http.StatusNotFound, "photo_id", id)
	}

	view, err := service.buildGallery(ctx.Request().Context(), filterFromQuery(ctx))
	if err != nil {
		slog.Error("htmxDeletePhotoHandler: failed to list photos after delete",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to fetch photos")
	}
	service.setNoCache(ctx)
	ctx.Response().Header().Set("HX-Trigger", "photos-changed")
	return ctx.Render(http.StatusOK, "gallery", view)
}

func (service *FrontendService) htmxThumbnailHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	thumbnail, err := service.coreService.Thumbnail(ctx.Request().Context(), id)
	if errors.Is(err, database.ErrPhotoNotFound) {
		return ctx.String(http.StatusNotFound, "Photo not found")
	}
	if err != nil || len(thumbnail) == 0 {
		slog.Warn("htmxThumbnailHandler: thumbnail not available",
			"status", http.StatusNotFound, "photo_id", id, "error", err)
		return ctx.String(http.StatusNotFound, "Thumbnail not available")
	}
	return ctx.Blob(http.StatusOK, mimePNG, thumbnail)
}

func (service *FrontendService) photoImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	photo, err := service.coreService.GetPhoto(ctx.Request().Context(), id)
	if errors.Is(err, database.ErrPhotoNotFound) {
		return ctx.String(http.StatusNotFound, "Photo not found")
	}
	if err != nil {
		slog.Error("photoImageHandler: failed to fetch photo", "status", http.StatusInternalServerError, "photo_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to fetch photo")
	}
	data, mediaType, err := common.DecodeDataURI(photo.FileData)
	if err != nil {
		slog.Warn("photoImageHandler: stored image is not a data URI", "status", http.StatusNotFound, "photo_id", id, "error", err)
		return ctx.String(http.StatusNotFound, "Image not available")
	}
	return ctx.Blob(http.StatusOK, mediaType, data)
}

type compareView struct {
	Comparison *core.Comparison
	Message    string
}

func (service *FrontendService) htmxCompareHandler(ctx echo.Context) error {
	beforeID, afterID := ctx.QueryParam("before"), ctx.QueryParam("after")
	if beforeID == "" || afterID == "" {
		return ctx.Render(http.StatusOK, "compare", compareView{Message: "Select two photos to compare"})
	}

	comparison, err := service.coreService.Compare(ctx.Request().Context(), beforeID, afterID)
	if errors.Is(err, database.ErrPhotoNotFound) {
		return ctx.Render(http.StatusOK, "compare", compareView{Message: "Photo not found"})
	}
	if err != nil {
		slog.Error("htmxCompareHandler: failed to compare photos", "status", http.StatusInternalServerError,
			"before", beforeID, "after", afterID, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to compare photos")
	}
	return ctx.Render(http.StatusOK, "compare", compareView{Comparison: comparison})
}

type timelineView struct {
	Entries []stats.TimelineEntry
	Journey stats.Journey
}

func (service *FrontendService) htmxTimelineHandler(ctx echo.Context) error {
	entries, journey, err := service.coreService.Timeline(ctx.Request().Context())
	if err != nil {
		slog.Error("htmxTimelineHandler: failed to build timeline", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to fetch photos")
	}
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "timeline", timelineView{Entries: entries, Journey: journey})
}

type videoView struct {
	Job     core.VideoJob
	Message string
}

func videoSettingsFromForm(ctx echo.Context) video.Settings {
	seconds, err := strconv.ParseFloat(ctx.FormValue("seconds"), 64)
	if err != nil || seconds < 0 {
		seconds = 0
	}
	photoType := ctx.FormValue("photoType")
	if photoType == "all" {
		photoType = ""
	}
	return video.Settings{
		SecondsPerPhoto: seconds,
		Transition:      video.Transition(ctx.FormValue("transition")),
		Resolution:      video.Resolution(ctx.FormValue("resolution")),
		IncludeStats:    ctx.FormValue("includeStats") != "",
		PhotoType:       database.PhotoType(photoType),
	}
}

func (service *FrontendService) htmxStartVideoHandler(ctx echo.Context) error {
	settings := videoSettingsFromForm(ctx)
	if settings.PhotoType != "" && !settings.PhotoType.Valid() {
		return ctx.Render(http.StatusOK, "video", videoView{Message: "Unknown photo type"})
	}

	id, err := service.coreService.StartVideo(settings)
	switch {
	case errors.Is(err, video.ErrNoPhotos):
		return ctx.Render(http.StatusOK, "video", videoView{Message: "There are no photos to put in a video"})
	case errors.Is(err, core.ErrTooManyJobs):
		return ctx.Render(http.StatusOK, "video", videoView{Message: "Too many videos are being generated, try again shortly"})
	case err != nil:
		slog.Error("htmxStartVideoHandler: failed to start video", "status", http.StatusInternalServerError, "error", err)
		return ctx.Render(http.StatusOK, "video", videoView{Message: "Video generation is not available"})
	}

	job, err := service.coreService.VideoJob(id)
	if err != nil {
		return ctx.String(http.StatusNotFound, "Video not found")
	}
	return ctx.Render(http.StatusOK, "video", videoView{Job: job})
}

func (service *FrontendService) htmxVideoStatusHandler(ctx echo.Context) error {
	job, err := service.coreService.VideoJob(ctx.Param("id"))
	if err != nil {
		return ctx.String(http.StatusNotFound, "Video not found")
	}
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "video", videoView{Job: job})
}

func (service *FrontendService) videoDownloadHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	job, err := service.coreService.VideoJob(id)
	if err != nil || !job.Done || job.Media == nil {
		slog.Warn("videoDownloadHandler: video not available", "status", http.StatusNotFound, "job_id", id, "error", err)
		return ctx.String(http.StatusNotFound, "Video not available")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", job.Filename()))
	return ctx.Blob(http.StatusOK, job.Media.MimeType, job.Media.Data)
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}
