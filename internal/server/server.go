package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/KaramelBytes/hostboard/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"k8s.io/klog/v2"
)

//go:embed templates/index.html
var templateFS embed.FS

// Options configure the dashboard server.
type Options struct {
	Addr       string
	Title      string
	Size       render.Size
	SessionTTL time.Duration
	// MaxSessions caps live sessions; the least recently seen is evicted.
	MaxSessions int
}

// Server serves the dashboard for one cleaned table. Every visitor gets a
// session holding an independent copy of that table.
type Server struct {
	opt   Options
	store *sessionStore
	tmpl  *template.Template
}

// New builds a server over an already cleaned table.
func New(src *listings.Table, opt Options) *Server {
	if opt.Title == "" {
		opt.Title = "Boston Airbnb Host Behavior"
	}
	if opt.Addr == "" {
		opt.Addr = ":8501"
	}
	return &Server{
		opt:   opt,
		store: newSessionStore(src, opt.SessionTTL, opt.MaxSessions),
		tmpl:  template.Must(template.ParseFS(templateFS, "templates/index.html")),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/charts/{view}.svg", s.handleChart)
	r.Get("/api/views", s.handleViews)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	log := klog.FromContext(ctx)
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opt.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if s.opt.SessionTTL > 0 {
		go func() {
			t := time.NewTicker(s.opt.SessionTTL / 2)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if n := s.store.sweep(); n > 0 {
						log.V(2).Info("expired sessions", "count", n, "active", s.store.len())
					}
				}
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("serving dashboard", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		klog.FromContext(r.Context()).V(2).Info("request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}
