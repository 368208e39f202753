package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/screenwerk/signage/internal/app"
	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/logging"
	"github.com/screenwerk/signage/internal/mediastore"
)

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) handleListLayouts(c echo.Context) error {
	layouts, err := s.app.ListLayouts(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list layouts", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list layouts")
	}
	if layouts == nil {
		layouts = []domain.Layout{}
	}
	return c.JSON(http.StatusOK, layouts)
}

func (s *Server) handleGetLayout(c echo.Context) error {
	layout, err := s.app.GetLayout(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrLayoutNotFound) {
		return errorJSON(c, http.StatusNotFound, "layout not found")
	}
	if err != nil {
		logging.WithLayout(c.Param("id")).Error("Failed to get layout", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to get layout")
	}
	return c.JSON(http.StatusOK, layout)
}

func (s *Server) handleSaveLayout(c echo.Context) error {
	var layout domain.Layout
	if err := c.Bind(&layout); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid layout payload")
	}

	saved, err := s.app.SaveLayout(c.Request().Context(), layout)
	if errors.Is(err, domain.ErrInvalidRecord) {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		logging.WithLayout(layout.LayoutID).Error("Failed to save layout", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to save layout")
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) handleListAds(c echo.Context) error {
	ads, err := s.app.ListAds(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list ads", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list ads")
	}
	if ads == nil {
		ads = []domain.Ad{}
	}
	return c.JSON(http.StatusOK, ads)
}

func (s *Server) handleSaveAd(c echo.Context) error {
	var ad domain.Ad
	if err := c.Bind(&ad); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid ad payload")
	}

	saved, err := s.app.SaveAd(c.Request().Context(), ad)
	if errors.Is(err, domain.ErrInvalidRecord) {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		slog.Error("Failed to save ad", "ad_id", ad.AdID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to save ad")
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) handleBatchGetAds(c echo.Context) error {
	var req struct {
		AdIDs []string `json:"adIds"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid batch request")
	}

	ads, err := s.app.BatchGetAds(c.Request().Context(), req.AdIDs)
	if err != nil {
		slog.Error("Failed to batch get ads", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to batch get ads")
	}
	if ads == nil {
		ads = []domain.Ad{}
	}
	return c.JSON(http.StatusOK, ads)
}

func (s *Server) handleDeleteAd(c echo.Context) error {
	err := s.app.DeleteAd(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrAdNotFound) {
		return errorJSON(c, http.StatusNotFound, "ad not found")
	}
	if err != nil {
		slog.Error("Failed to delete ad", "ad_id", c.Param("id"), "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to delete ad")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleIssueUpload(c echo.Context) error {
	var req struct {
		AdID     string `json:"adId"`
		FileName string `json:"fileName"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid upload request")
	}

	ticket, err := s.app.IssueUpload(c.Request().Context(), req.AdID, req.FileName)
	switch {
	case errors.Is(err, app.ErrMediaNotConfigured):
		return errorJSON(c, http.StatusServiceUnavailable, "media uploads not configured")
	case errors.Is(err, domain.ErrInvalidRecord), errors.Is(err, mediastore.ErrUnsupportedMedia):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case err != nil:
		slog.Error("Failed to issue upload", "ad_id", req.AdID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to issue upload")
	}
	return c.JSON(http.StatusOK, ticket)
}
