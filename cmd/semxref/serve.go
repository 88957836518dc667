package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/semxref/curie"
	"github.com/c360studio/semxref/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the identifier lookup API and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app, err := g.setup(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(context.Background()); err != nil {
					app.logger.Error("Shutdown failed", "error", err)
				}
			}()
			if _, err := app.openRuns(ctx); err != nil {
				return err
			}
			if addr == "" {
				addr = app.cfg.Metrics.Addr
			}
			return app.serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to metrics.addr)")
	return cmd
}

func (a *App) serve(ctx context.Context, addr string) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Serving lookup API", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", "error", err)
		return err
	}
	return nil
}

// router builds the HTTP routes. openRuns must have been called for the run
// endpoints to answer.
func (a *App) router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(a.logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.recorder.Registry(), promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		v1.GET("/curie", func(c *gin.Context) {
			uri := c.Query("uri")
			if uri == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "uri is required"})
				return
			}
			id, ok := a.curies.ToCURIE(uri)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no prefix matches uri", "uri": uri})
				return
			}
			c.JSON(http.StatusOK, gin.H{"uri": uri, "curie": id})
		})

		v1.GET("/uri", func(c *gin.Context) {
			id := c.Query("curie")
			if id == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "curie is required"})
				return
			}
			uri, err := a.curies.ToURI(id)
			switch {
			case errors.Is(err, curie.ErrUnknownPrefix):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			case err != nil:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"curie": id, "uri": uri})
		})

		v1.GET("/map/:table/:code", func(c *gin.Context) {
			table, code := c.Param("table"), c.Param("code")
			term, err := a.lookup(table, code)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"table": table, "code": code, "term": term})
		})

		v1.GET("/runs", func(c *gin.Context) {
			if a.runs == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history unavailable"})
				return
			}
			runs, err := a.runs.ListRuns(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"runs": runs})
		})

		v1.GET("/runs/:id", func(c *gin.Context) {
			if a.runs == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history unavailable"})
				return
			}
			run, err := a.runs.GetRun(c.Request.Context(), c.Param("id"))
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, run)
		})
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		logger.Debug("HTTP request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"ip", c.ClientIP())
	}
}
