package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)

	AuthOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_operations_total", Help: "Auth operations by outcome"},
		[]string{"op", "outcome"},
	)
	OTPIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_otp_issued_total", Help: "One-time codes issued"},
		[]string{"purpose"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_total", Help: "Notification deliveries by kind and outcome"},
		[]string{"kind", "outcome"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_rate_limited_total", Help: "Requests rejected by the rate limiter"},
		[]string{"route"},
	)
)

func MustRegister() {
	MustRegisterWith(prometheus.DefaultRegisterer)
}

func MustRegisterWith(r prometheus.Registerer) {
	r.MustRegister(RequestsTotal, ReqDuration, InFlight, AuthOps, OTPIssued, Notifications, RateLimited)
}
