package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/logger"
	"github.com/memohai/formmedia/internal/media"
)

// MediaHandler exposes upload, processing and retrieval of form attribute files.
type MediaHandler struct {
	service *media.Service
	limiter echo.MiddlewareFunc
	logger  *slog.Logger
}

// NewMediaHandler creates a media handler. Uploads are rate limited per
// client IP when rl.RequestsPerSecond is positive.
func NewMediaHandler(log *slog.Logger, service *media.Service, rl config.RateLimitConfig) *MediaHandler {
	h := &MediaHandler{
		service: service,
		logger:  log.With(slog.String("handler", "media")),
	}
	if rl.RequestsPerSecond > 0 {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(rl.RequestsPerSecond),
			Burst: rl.Burst,
		})
		h.limiter = middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: store,
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many uploads")
			},
		})
	}
	return h
}

// Register mounts the /media routes.
func (h *MediaHandler) Register(e *echo.Echo) {
	g := e.Group("/media")
	if h.limiter != nil {
		g.POST("/:entity/upload", h.Upload, h.limiter)
	} else {
		g.POST("/:entity/upload", h.Upload)
	}
	g.POST("/process", h.Process)
	g.GET("/:entity/file/*", h.Download)
	g.DELETE("/:entity/file/*", h.Delete)
}

// Upload godoc
// @Summary Upload a file into the entity tmp directory
// @Description Stores multipart field "file" under <entity>/tmp and returns the descriptor to submit with the form.
// @Tags media
// @Param entity path string true "Entity type code"
// @Param file formData file true "File"
// @Success 200 {object} media.UploadDescriptor
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /media/{entity}/upload [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	entity := strings.TrimSpace(c.Param("entity"))
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer func() {
		_ = src.Close()
	}()

	ctx := c.Request().Context()
	desc, err := h.service.SaveTemporary(ctx, entity, fh.Filename, fh.Header.Get(echo.HeaderContentType), src)
	if err != nil {
		logger.FromContext(ctx).Warn("upload rejected",
			slog.String("entity_type", entity),
			slog.String("file", fh.Filename),
			slog.Any("error", err),
		)
		return mediaHTTPError(err)
	}
	return c.JSON(http.StatusOK, desc)
}

// Process godoc
// @Summary Process a submitted image attribute value
// @Description Moves the tmp file into the dispersion path or wraps it as image content, depending on the entity type.
// @Tags media
// @Param payload body media.ProcessingParameters true "Processing parameters"
// @Success 200 {object} media.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /media/process [post]
func (h *MediaHandler) Process(c echo.Context) error {
	var params media.ProcessingParameters
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	params.EntityTypeCode = strings.TrimSpace(params.EntityTypeCode)
	if params.EntityTypeCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "entityTypeCode is required")
	}

	ctx := c.Request().Context()
	result, err := h.service.Process(ctx, params)
	if err != nil {
		logger.FromContext(ctx).Warn("process failed",
			slog.String("entity_type", params.EntityTypeCode),
			slog.String("form_code", params.FormCode),
			slog.Any("error", err),
		)
		return mediaHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Download godoc
// @Summary Stream a stored file
// @Tags media
// @Param entity path string true "Entity type code"
// @Param path path string true "Stored path, e.g. m/a/magento.jpg"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{entity}/file/{path} [get]
func (h *MediaHandler) Download(c echo.Context) error {
	entity := strings.TrimSpace(c.Param("entity"))
	rc, mime, err := h.service.OpenStored(c.Request().Context(), entity, c.Param("*"))
	if err != nil {
		return mediaHTTPError(err)
	}
	defer func() {
		_ = rc.Close()
	}()
	return c.Stream(http.StatusOK, mime, rc)
}

// Delete godoc
// @Summary Remove a stored file
// @Tags media
// @Param entity path string true "Entity type code"
// @Param path path string true "Stored path"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /media/{entity}/file/{path} [delete]
func (h *MediaHandler) Delete(c echo.Context) error {
	entity := strings.TrimSpace(c.Param("entity"))
	if err := h.service.RemoveStored(c.Request().Context(), entity, c.Param("*")); err != nil {
		return mediaHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
