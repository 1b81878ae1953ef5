package metrics

import (
	"github.com/dom/mini-crm/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector the server exports. Each instance owns its
// registry so tests can build as many servers as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	LoginAttemptsTotal        *prometheus.CounterVec
	RegistrationAttemptsTotal *prometheus.CounterVec
	TokenRefreshTotal         *prometheus.CounterVec
	TokenRotationsTotal       *prometheus.CounterVec
	AuthRejectionsTotal       *prometheus.CounterVec
	RefreshTokensSweptTotal   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicrm_http_requests_total",
			Help: "The total number of HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minicrm_http_request_duration_seconds",
			Help:    "The HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LoginAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicrm_login_attempts_total",
			Help: "The total number of login attempts",
		}, []string{"status"}),
		RegistrationAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicrm_registration_attempts_total",
			Help: "The total number of registration attempts",
		}, []string{"status"}),
		TokenRefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicrm_token_refresh_total",
			Help: "The total number of refresh-token exchanges",
		}, []string{"status"}),
		TokenRotationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicrm_token_rotations_total",
			Help: "The total number of silent access-token rotations",
		}, []string{"status"}),
		AuthRejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "minicrm_auth_rejections_total",
			Help: "The total number of requests rejected by the session gate",
		}, []string{"code"}),
		RefreshTokensSweptTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "minicrm_refresh_tokens_swept_total",
			Help: "The total number of expired refresh tokens removed by the sweeper",
		}),
	}
}

// Outcome labels an operation result: "success", "rejected" for client
// errors, "error" for storage failures.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.KindOf(err) == domain.KindStorage:
		return "error"
	default:
		return "rejected"
	}
}
