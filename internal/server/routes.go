package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Layout API
	s.echo.GET("/api/layouts", s.handleListLayouts)
	s.echo.POST("/api/layouts", s.handleSaveLayout)
	s.echo.GET("/api/layouts/:id", s.handleGetLayout)

	// Ad API
	s.echo.GET("/api/ads", s.handleListAds)
	s.echo.POST("/api/ads", s.handleSaveAd)
	s.echo.POST("/api/ads/batchGet", s.handleBatchGetAds)
	s.echo.DELETE("/api/ads/:id", s.handleDeleteAd)
	s.echo.POST("/api/ads/upload", s.handleIssueUpload)

	// Viewer websocket
	s.echo.GET("/ws", s.handleWebSocket)
}
