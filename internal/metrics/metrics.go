// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// domain operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	invitationsAnswered *prometheus.CounterVec
	visitsRecorded      *prometheus.CounterVec
	mailsSent           *prometheus.CounterVec
}

// New creates and registers all collectors under namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		invitationsAnswered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_answered_total",
			Help:      "Invitations answered, by invitable type and answer",
		}, []string{"invitable_type", "status"}),
		visitsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_recorded_total",
			Help:      "Visits recorded, by visited type",
		}, []string{"visited_type"}),
		mailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mails_sent_total",
			Help:      "Notification mails, by template and result",
		}, []string{"template", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.invitationsAnswered,
		m.visitsRecorded,
		m.mailsSent,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records the duration and status of each request, labelled by
// route template so that ids do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// InvitationAnswered counts an answered invitation.
func (m *Metrics) InvitationAnswered(invitableType, status string) {
	if m == nil {
		return
	}
	m.invitationsAnswered.WithLabelValues(invitableType, status).Inc()
}

// VisitRecorded counts a recorded visit.
func (m *Metrics) VisitRecorded(visitedType string) {
	if m == nil {
		return
	}
	m.visitsRecorded.WithLabelValues(visitedType).Inc()
}

// MailSent counts a notification mail attempt.
func (m *Metrics) MailSent(template string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mailsSent.WithLabelValues(template, result).Inc()
}
