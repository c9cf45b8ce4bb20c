// Package server exposes the dashboard views over HTTP. Each view is an
// SVG rendered on demand from the shared repository and view state, so a
// browser polling the endpoints sees the same linked views the terminal
// dashboard shows.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/render"
	"github.com/Veraticus/geoscope/internal/render/svg"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

const (
	defaultViewWidth  = 800.0
	defaultViewHeight = 480.0
	maxViewDimension  = 4000.0
)

// Server serves the dashboard views and state over HTTP.
type Server struct {
	repo   *repository.Repository
	store  *viewstate.Store
	logger *slog.Logger
}

// New creates a Server.
func New(repo *repository.Repository, store *viewstate.Store, logger *slog.Logger) *Server {
	if store == nil {
		store = viewstate.NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{repo: repo, store: store, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/state", s.handleGetState)
		api.PATCH("/state", s.handlePatchState)
		api.POST("/selection/toggle", s.handleToggleSelection)
		api.DELETE("/selection", s.handleClearSelection)
		api.GET("/curve", s.handleCurve)
	}

	views := r.Group("/views")
	{
		views.GET("/map.svg", s.handleMapView)
		views.GET("/scatter.svg", s.handleScatterView)
		views.GET("/pcp.svg", s.handlePCPView)
		views.GET("/clusters.svg", s.handleClustersView)
	}

	return r
}

// Run loads the dataset, then serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if _, err := s.repo.LoadAll(ctx); err != nil {
		// Serve anyway; the views report "no data" and /healthz exposes
		// the partial cache state.
		s.logger.Warn("initial data load failed", "error", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := s.repo.Status()
	code := http.StatusOK
	if !status.Ready() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"ready":        status.Ready(),
		"has_records":  status.HasRecords,
		"has_geometry": status.HasGeometry,
		"has_index":    status.HasIndex,
	})
}

type stateResponse struct {
	MapFeature        string   `json:"map_feature"`
	XVar              string   `json:"x_var"`
	YVar              string   `json:"y_var"`
	K                 int      `json:"k"`
	SelectedCountries []string `json:"selected_countries"`
	IsLoading         bool     `json:"is_loading"`
	Error             string   `json:"error,omitempty"`
}

func (s *Server) handleGetState(c *gin.Context) {
	st := s.store.Snapshot()
	c.JSON(http.StatusOK, stateResponse{
		MapFeature:        st.MapFeature.APIName(),
		XVar:              st.XVar.APIName(),
		YVar:              st.YVar.APIName(),
		K:                 st.K,
		SelectedCountries: st.SelectedCountries,
		IsLoading:         st.IsLoading,
		Error:             st.Error,
	})
}

type statePatch struct {
	MapFeature *string `json:"map_feature"`
	XVar       *string `json:"x_var"`
	YVar       *string `json:"y_var"`
	K          *int    `json:"k"`
}

func (s *Server) handlePatchState(c *gin.Context) {
	var patch statePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if patch.K != nil {
		if *patch.K < 1 || *patch.K > repository.MaxClusterCount {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("k must be in [1, %d]", repository.MaxClusterCount),
			})
			return
		}
		s.store.SetK(*patch.K)
	}
	for _, set := range []struct {
		name  *string
		apply func(model.Field)
	}{
		{patch.MapFeature, s.store.SetMapFeature},
		{patch.XVar, s.store.SetXVar},
		{patch.YVar, s.store.SetYVar},
	} {
		if set.name == nil {
			continue
		}
		field, err := model.ParseField(*set.name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown field %q", *set.name)})
			return
		}
		set.apply(field)
	}

	s.handleGetState(c)
}

func (s *Server) handleToggleSelection(c *gin.Context) {
	var req struct {
		Country string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country is required"})
		return
	}
	if !s.repo.Dataset().HasCountry(req.Country) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown country %q", req.Country)})
		return
	}

	s.store.ToggleCountry(req.Country)
	s.handleGetState(c)
}

func (s *Server) handleClearSelection(c *gin.Context) {
	s.store.SetSelectedCountries(nil)
	s.handleGetState(c)
}

func (s *Server) handleCurve(c *gin.Context) {
	st := s.store.Snapshot()
	curve := s.repo.ErrorCurve(c.Request.Context(), st.XVar, st.YVar)
	if curve == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "error curve unavailable"})
		return
	}

	points := make([]gin.H, 0, len(curve.Points))
	for _, p := range curve.Points {
		points = append(points, gin.H{"k": p.K, "mse": p.MSE})
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "optimal_k": curve.OptimalK})
}

func (s *Server) handleMapView(c *gin.Context) {
	w, h := viewDims(c)
	t := render.Transform{
		X: queryFloat(c, "tx", 0),
		Y: queryFloat(c, "ty", 0),
		K: queryFloat(c, "zoom", 1),
	}
	scene := render.Map(s.repo.Dataset(), s.store.Snapshot(), w, h, t, render.MapOptions{})
	writeSVG(c, scene)
}

func (s *Server) handleScatterView(c *gin.Context) {
	w, h := viewDims(c)
	scene := render.Scatter(s.repo.Dataset(), s.store.Snapshot(), w, h)
	writeSVG(c, scene)
}

func (s *Server) handlePCPView(c *gin.Context) {
	w, h := viewDims(c)
	scene := render.PCP(s.repo.Dataset(), s.store.Snapshot(), w, h)
	writeSVG(c, scene)
}

func (s *Server) handleClustersView(c *gin.Context) {
	st := s.store.Snapshot()
	w, h := viewDims(c)
	curve := s.repo.ErrorCurve(c.Request.Context(), st.XVar, st.YVar)
	scene := render.Histogram(curve, st.K, w, h)
	writeSVG(c, scene)
}

func writeSVG(c *gin.Context, scene render.Scene) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", svg.Encode(scene))
}

func viewDims(c *gin.Context) (float64, float64) {
	w := queryFloat(c, "width", defaultViewWidth)
	h := queryFloat(c, "height", defaultViewHeight)
	if w <= 0 || w > maxViewDimension {
		w = defaultViewWidth
	}
	if h <= 0 || h > maxViewDimension {
		h = defaultViewHeight
	}
	return w, h
}

func queryFloat(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
