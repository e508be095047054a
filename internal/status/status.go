// Package status serves a read-only HTTP view of the bot: guild playback
// state and catalog search.
package status

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 25
	maxLimit     = 100
)

// Players is the read side of the playback engine.
type Players interface {
	Guilds() []string
	Snapshot(guildID string) player.Snapshot
}

// Library searches the catalog.
type Library interface {
	Search(query string, limit int) ([]library.ScoredTrack, error)
}

type handler struct {
	players Players
	library Library
	started time.Time
}

// NewRouter builds the status API.
func NewRouter(players Players, lib Library) *gin.Engine {
	h := &handler{players: players, library: lib, started: time.Now()}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", h.health)
	r.GET("/guilds", h.guilds)
	r.GET("/guilds/:id", h.guild)
	r.GET("/library", h.search)
	return r
}

// Serve runs the API on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("[Status] HTTP server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": int64(time.Since(h.started).Seconds()),
		"guilds": len(h.players.Guilds()),
	})
}

func (h *handler) guilds(c *gin.Context) {
	ids := h.players.Guilds()
	out := make([]player.Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.players.Snapshot(id))
	}
	c.JSON(http.StatusOK, gin.H{"guilds": out})
}

func (h *handler) guild(c *gin.Context) {
	id := c.Param("id")
	for _, known := range h.players.Guilds() {
		if known == id {
			c.JSON(http.StatusOK, h.players.Snapshot(id))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown guild"})
}

func (h *handler) search(c *gin.Context) {
	query := c.Query("q")

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLimit)
	}

	results, err := h.library.Search(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("[Status] Library search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "library unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("[Status] Request")
	}
}
