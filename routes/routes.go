package routes

import (
	"net/http"

	"github.com/agentdouble/kpix/handlers"
	"github.com/agentdouble/kpix/middlewares"
	"github.com/agentdouble/kpix/services"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	KPI       *handlers.KPIHandler
	Action    *handlers.ActionHandler
	Import    *handlers.ImportHandler
	Reporting *handlers.ReportingHandler
}

type Options struct {
	JWTSecret     string
	ImportLimiter *middlewares.OrgRateLimiter
	Gatherer      prometheus.Gatherer
	Metrics       *services.Metrics
	Logger        *zap.Logger
}

// Setup mounts every route on a ServeMux and wraps it with the shared
// middleware chain.
func Setup(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	jwtMiddleware := middlewares.JWTMiddleware(opts.JWTSecret)
	protected := func(fn http.HandlerFunc) http.Handler {
		return jwtMiddleware(fn)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	// Auth
	mux.HandleFunc("POST /api/auth/signup", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.Handle("GET /api/auth/me", protected(h.Auth.Me))
	mux.Handle("GET /api/organizations/me", protected(h.Auth.Organization))
	mux.Handle("GET /api/users", protected(h.Auth.ListUsers))
	mux.Handle("POST /api/users", protected(h.Auth.CreateUser))

	// Dashboards
	mux.Handle("GET /api/dashboards", protected(h.Dashboard.ListDashboards))
	mux.Handle("POST /api/dashboards", protected(h.Dashboard.CreateDashboard))
	mux.Handle("GET /api/dashboards/{id}", protected(h.Dashboard.GetDashboard))
	mux.Handle("PATCH /api/dashboards/{id}", protected(h.Dashboard.UpdateDashboard))
	mux.Handle("DELETE /api/dashboards/{id}", protected(h.Dashboard.DeleteDashboard))

	// KPIs and values
	mux.Handle("GET /api/dashboards/{id}/kpis", protected(h.KPI.ListKPIs))
	mux.Handle("POST /api/dashboards/{id}/kpis", protected(h.KPI.CreateKPI))
	mux.Handle("GET /api/kpis/{id}", protected(h.KPI.GetKPI))
	mux.Handle("PATCH /api/kpis/{id}", protected(h.KPI.UpdateKPI))
	mux.Handle("DELETE /api/kpis/{id}", protected(h.KPI.DeleteKPI))
	mux.Handle("GET /api/kpis/{id}/values", protected(h.KPI.ListValues))
	mux.Handle("POST /api/kpis/{id}/values", protected(h.KPI.SubmitValue))

	// Action plans and comments
	mux.Handle("GET /api/kpis/{id}/actions", protected(h.Action.ListActions))
	mux.Handle("POST /api/kpis/{id}/actions", protected(h.Action.CreateAction))
	mux.Handle("PATCH /api/actions/{id}", protected(h.Action.UpdateAction))
	mux.Handle("GET /api/kpis/{id}/comments", protected(h.Action.ListKPIComments))
	mux.Handle("POST /api/kpis/{id}/comments", protected(h.Action.AddKPIComment))
	mux.Handle("GET /api/actions/{id}/comments", protected(h.Action.ListActionComments))
	mux.Handle("POST /api/actions/{id}/comments", protected(h.Action.AddActionComment))

	// Imports
	mux.Handle("POST /api/imports/kpi-values", jwtMiddleware(opts.ImportLimiter.Middleware(http.HandlerFunc(h.Import.ImportKPIValues))))
	mux.Handle("GET /api/imports/jobs", protected(h.Import.ListJobs))
	mux.Handle("GET /api/imports/jobs/{id}", protected(h.Import.GetJob))
	mux.Handle("GET /api/imports/jobs/{id}/file", protected(h.Import.DownloadJobFile))

	// Reporting
	mux.Handle("GET /api/reporting/overview", protected(h.Reporting.Overview))
	mux.Handle("GET /api/reporting/top-risks", protected(h.Reporting.TopRisks))
	mux.Handle("GET /api/reporting/direction", protected(h.Reporting.Direction))

	// RequestLogger sits next to the mux so it can read the matched pattern.
	var handler http.Handler = middlewares.RequestLogger(opts.Logger, opts.Metrics)(mux)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)
	return handler
}
