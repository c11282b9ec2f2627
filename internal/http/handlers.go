package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"swingtube/internal/gallery"
	"swingtube/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports whether the page can be served.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil || s.templates.Lookup("index.html") == nil || s.templates.Lookup("gallery.html") == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.assets == nil || s.assets.Len() == 0 {
		checks["static"] = "failed: no static assets"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["static"] = map[string]interface{}{"assets": s.assets.Len(), "status": "ok"}
	}

	m := s.store.Metrics()
	checks["sessions"] = map[string]interface{}{
		"active":         m.Active,
		"loads_ok":       m.LoadsOK,
		"loads_failed":   m.LoadsFailed,
		"loads_canceled": m.LoadsCanceled,
		"status":         "ok",
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	sessions := s.store.Metrics()

	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Total number of HTTP 5xx responses", "counter", traceMetrics.ServerErrors)
	metric("http_request_duration_avg_microseconds", "Average HTTP request duration", "gauge", traceMetrics.AverageResponseTime)

	metric("gallery_sessions_started_total", "Total gallery sessions started", "counter", sessions.Started)
	fmt.Fprintf(w, "# HELP gallery_loads_total Settled feed loads by result\n")
	fmt.Fprintf(w, "# TYPE gallery_loads_total counter\n")
	fmt.Fprintf(w, "gallery_loads_total{result=\"ok\"} %d\n", sessions.LoadsOK)
	fmt.Fprintf(w, "gallery_loads_total{result=\"failed\"} %d\n", sessions.LoadsFailed)
	fmt.Fprintf(w, "gallery_loads_total{result=\"canceled\"} %d\n\n", sessions.LoadsCanceled)
	metric("gallery_sessions_evicted_total", "Total gallery sessions closed by expiry, pressure or shutdown", "counter", sessions.Evicted)
	metric("gallery_sessions_active", "Live gallery sessions", "gauge", sessions.Active)

	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("invalid_ip_attempts_total", "Total forwarded headers carrying an invalid address", "counter", securityMetrics.InvalidIPAttempts)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

// handleIndex starts a gallery session and renders the page. The results
// region fetches itself from /ui/gallery until the load settles.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	sess := s.store.Start()
	view := sess.View(ParseSelection(r.URL.Query(), now), now)

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentGallery)
	logger.DebugContext(r.Context(), "Page session started",
		log.NewFields().
			WithSession(sess.ID(), view.State.String()).
			WithSelection(view.Selection.Month, view.Selection.Year).
			ToSlice()...)

	body, err := s.render("index.html", view)
	if err != nil {
		s.renderFailed(w, r, "index.html", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleGallery renders the results partial for a session. It waits up to
// waitTimeout for a pending load; a still-loading view polls again.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	logger := log.FromContext(ctx).WithComponent(log.ComponentGallery)

	id := SessionParam(q)
	sess, started := s.store.GetOrStart(id)
	if started && id != "" {
		logger.InfoContext(ctx, "Session expired, started a new one",
			"previous_session_id", id,
			log.FieldSessionID, sess.ID())
	}

	wctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	state := sess.Wait(wctx)
	cancel()

	now := s.now()
	view := sess.View(ParseSelection(q, now), now)

	fields := log.NewFields().
		WithSession(sess.ID(), state.String()).
		WithSelection(view.Selection.Month, view.Selection.Year).
		WithOperation(log.OpFilter)
	switch state {
	case gallery.StateFailed:
		logger.WarnContext(ctx, "Gallery load failed", fields.WithError(sess.Err()).ToSlice()...)
	case gallery.StateReady:
		fields[log.FieldRecordCount] = view.Total
		fields[log.FieldMatchCount] = len(view.Cards)
		logger.DebugContext(ctx, "Gallery filtered", fields.ToSlice()...)
	}

	body, err := s.render("gallery.html", view)
	if err != nil {
		s.renderFailed(w, r, "gallery.html", err)
		return
	}

	resp := NewHTMXResponse().Header("Cache-Control", "no-store").BodyHTML(body)
	if state != gallery.StateLoading {
		resp.TriggerGallerySettled(state.String(), len(view.Cards))
	}
	resp.Write(w)
}

// render executes a template into memory so a failure never leaves a half
// written response.
func (s *Server) render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
		"Template execution failed", err, log.ComponentTemplate, log.OpRender,
		log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
	InternalServerError(gallery.ErrorMessage).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
