package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vacstat/internal/log"
	appweb "vacstat/web"
)

// Options wires the server to its collaborators. Only Reports is required.
// With a Publisher, POST /admin/process enqueues the file; otherwise it runs
// Processor synchronously.
type Options struct {
	Reports   ReportReader
	Latest    LatestSource
	Processor FileProcessor
	Publisher JobPublisher

	MediaRoot string
	DataDir   string
	HHQuery   string

	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	mux       *http.ServeMux
	templates *template.Template
	validate  *validator.Validate
	limiter   *clientLimiter
	logger    *log.Logger
	startedAt time.Time

	reports   ReportReader
	latest    LatestSource
	processor FileProcessor
	publisher JobPublisher

	mediaRoot string
	dataDir   string
	hhQuery   string

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		mux:       mux,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		limiter:   newClientLimiter(opts.RateLimitPerMinute),
		logger:    logger,
		startedAt: time.Now(),
		reports:   opts.Reports,
		latest:    opts.Latest,
		processor: opts.Processor,
		publisher: opts.Publisher,
		mediaRoot: opts.MediaRoot,
		dataDir:   opts.DataDir,
		hhQuery:   opts.HHQuery,
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", cacheFor(3600, static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}
	if s.mediaRoot != "" {
		media := http.StripPrefix("/media/", http.FileServer(http.Dir(s.mediaRoot)))
		s.route("GET /media/", noDirListing(media).ServeHTTP)
	}

	s.route("GET /{$}", s.handleIndex)
	s.route("GET /statistics", s.handleStatistics)
	s.route("GET /demand", s.handleDemand)
	s.route("GET /geography", s.handleGeography)
	s.route("GET /skills", s.handleSkills)
	s.route("GET /latest", s.handleLatest)
	s.route("POST /admin/process", s.handleProcess)
	s.route("GET /admin/runs", s.handleRuns)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

func (s *Server) route(pattern string, h http.HandlerFunc) {
	var handler http.Handler = s.instrument(pattern, h)
	handler = log.RequestIDMiddleware(requestIDFromContext)(handler)
	handler = log.Middleware(s.logger)(handler)
	s.mux.Handle(pattern, withRequestID(handler))
}

// Shutdown stops background routines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func cacheFor(maxAge int, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
		next.ServeHTTP(w, r)
	})
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
