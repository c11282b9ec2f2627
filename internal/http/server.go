package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"swingtube/internal/gallery"
	"swingtube/internal/log"
	"swingtube/internal/middleware/ratelimit"
	"swingtube/internal/middleware/security"
	"swingtube/internal/middleware/trace"
	appweb "swingtube/web"
)

// Options tunes a Server. Zero values take defaults.
type Options struct {
	// Location is the calendar used for the default month and year.
	Location *time.Location
	// WaitTimeout bounds how long a gallery partial waits for a load.
	WaitTimeout time.Duration
	// RequestsPerMinute is the per-client limit on page routes.
	RequestsPerMinute int
	// TrustedProxies are CIDRs, besides private networks, whose forwarding
	// headers are honoured.
	TrustedProxies []string
	Logger         *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	assets    *assetCache
	store     *gallery.Store
	logger    *log.Logger

	location    *time.Location
	waitTimeout time.Duration
	now         func() time.Time
	started     time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, templates and static assets, returning a
// ready-to-run http.Server.
func NewServer(addr string, store *gallery.Store, opts Options) (*Server, error) {
	if store == nil {
		return nil, errors.New("nil gallery store")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("security detector: %w", err)
	}

	t, err := template.New("").Funcs(template.FuncMap{
		"videoFallback": func() string { return gallery.VideoFallback },
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	assets, err := newAssetCache(appweb.StaticFS, "static", logger.WithComponent(log.ComponentStatic))
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		templates:   t,
		assets:      assets,
		store:       store,
		logger:      logger,
		location:    opts.Location,
		waitTimeout: opts.WaitTimeout,
		started:     time.Now(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
	}
	s.now = func() time.Time { return time.Now().In(s.location) }

	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, s.logRateLimited)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", limited(http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /ui/gallery", limited(http.HandlerFunc(s.handleGallery)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(http.StripPrefix("/static/", s.assets)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.traceMiddleware.Middleware(detector.Middleware(headers.Middleware(mux)))
	s.Addr = addr
	s.ReadHeaderTimeout = 10 * time.Second

	return s, nil
}

func (s *Server) logRateLimited(r *http.Request, clientIP string) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		log.FieldClientIP, clientIP,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
}

// Shutdown gracefully shuts down the server and its background routines.
// The gallery store is owned by the caller and is not closed here.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
