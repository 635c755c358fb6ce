package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consultation_transitions_total",
		Help: "Successful consultation status writes by target status.",
	}, []string{"to"})

	Subscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscriptions",
		Help: "Live change feed subscriptions.",
	})

	WeatherFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_fallback_total",
		Help: "Weather lookups answered with the fallback reading.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, Transitions, Subscriptions, WeatherFallbacks)
}

// Middleware counts requests by their route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			HTTPRequests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			return err
		}
	}
}

func Handler() echo.HandlerFunc { return echo.WrapHandler(promhttp.Handler()) }
