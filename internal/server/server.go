// Package server exposes the collection and its views over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/awano27/fin-news-site/internal/briefing"
	"github.com/awano27/fin-news-site/internal/classify"
	"github.com/awano27/fin-news-site/internal/config"
	"github.com/awano27/fin-news-site/internal/ingest"
	"github.com/awano27/fin-news-site/internal/query"
	"github.com/awano27/fin-news-site/internal/store"
)

// Options tune the view endpoints.
type Options struct {
	Window    time.Duration
	BriefSize int
}

type Server struct {
	store  *store.Store
	ingest *ingest.Service
	opts   Options
	log    zerolog.Logger
	now    func() time.Time
}

func New(st *store.Store, svc *ingest.Service, opts Options, log zerolog.Logger) *Server {
	if opts.Window <= 0 {
		opts.Window = query.DefaultWindow
	}
	return &Server{
		store:  st,
		ingest: svc,
		opts:   opts,
		log:    log.With().Str("component", "server").Logger(),
		now:    time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	{
		api.GET("/items", s.getItems)
		api.GET("/view", s.getView)
		api.GET("/brief", s.getBrief)
		api.GET("/status", s.getStatus)
		api.POST("/ingest", s.postIngest)
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// getItems returns the whole persisted collection. Clients always refetch.
func (s *Server) getItems(c *gin.Context) {
	items := s.store.Load(c.Request.Context())
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, items)
}

func (s *Server) getView(c *gin.Context) {
	st, err := s.stateFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries := query.View(s.store.Load(c.Request.Context()), st, s.now())
	if limit, _ := strconv.Atoi(c.Query("limit")); limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "entries": entries})
}

// stateFromQuery builds a query state from URL parameters. Unknown category,
// issuer and sort values fall back to no filter and the default order.
func (s *Server) stateFromQuery(c *gin.Context) (query.State, error) {
	st := query.Default().WithWindow(s.opts.Window)
	if w := c.Query("window"); w != "" {
		if w == "all" {
			st = st.WithWindow(0)
		} else {
			st = st.WithWindow(config.ParseDuration(w, s.opts.Window))
		}
	}
	typ, err := classify.ResolveType(c.DefaultQuery("type", query.All))
	if err != nil {
		return query.State{}, err
	}
	st = st.
		WithCategory(c.DefaultQuery("category", query.All)).
		WithType(typ).
		WithIssuer(c.DefaultQuery("issuer", query.All)).
		WithSearch(c.Query("q")).
		WithSort(query.ParseSort(c.Query("sort")))
	if c.Query("dedupe") == "false" || c.Query("dedupe") == "0" {
		st = st.ToggleDedupe()
	}
	return st, nil
}

func (s *Server) getBrief(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(s.opts.BriefSize)))
	focus := ""
	if f := c.Query("focus"); f != "" {
		t, err := classify.ResolveType(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if t != query.All {
			focus = t
		}
	}
	b := briefing.Generate(s.store.Load(c.Request.Context()), briefing.Options{
		Window: s.opts.Window,
		Size:   size,
		Focus:  focus,
	}, s.now())
	c.JSON(http.StatusOK, b)
}

func (s *Server) getStatus(c *gin.Context) {
	count, size, err := s.store.Stats(c.Request.Context())
	resp := gin.H{"items": count, "bytes": size, "ingest": s.ingest.Snapshot()}
	if err != nil {
		resp["storeError"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) postIngest(c *gin.Context) {
	res, err := s.ingest.Run(c.Request.Context())
	if errors.Is(err, ingest.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
