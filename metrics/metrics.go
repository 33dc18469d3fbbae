// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about the logical requests
// a davx.Client executes. Install a Metrics into the client's handler
// group:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	handlers := &davx.HandlerGroup{}
//	m.Install(handlers)
//	client := &davx.Client{Handlers: handlers}
package metrics

import (
	"strconv"

	"github.com/gogama/davx"
	"github.com/gogama/davx/fallback"
	"github.com/gogama/davx/request"
	"github.com/gogama/davx/result"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "davx"

// Metrics holds the client metrics. It implements davx.Handler.
type Metrics struct {
	Executions      *prometheus.CounterVec
	Attempts        *prometheus.CounterVec
	AttemptTimeouts prometheus.Counter
	Redirects       *prometheus.CounterVec
	Fallbacks       *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. If reg is nil
// the metrics are not registered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Executions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "executions_total",
				Help:      "Total number of logical requests executed, by method and result code",
			},
			[]string{"method", "code"},
		),
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "attempts_total",
				Help:      "Total number of physical HTTP requests, by method",
			},
			[]string{"method"},
		),
		AttemptTimeouts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "attempt_timeouts_total",
				Help:      "Total number of physical HTTP requests that timed out",
			},
		),
		Redirects: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "redirects_total",
				Help:      "Total number of redirect hops followed, by redirect status",
			},
			[]string{"status"},
		),
		Fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fallbacks_total",
				Help:      "Total number of IPv4 fallback attempts, by trigger",
			},
			[]string{"trigger"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "execution_duration_seconds",
				Help:      "Logical request duration in seconds, including redirects and fallback",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method"},
		),
	}
}

// Install adds m to the handler chains of the events it observes.
func (m *Metrics) Install(g *davx.HandlerGroup) {
	g.Add(m,
		davx.AfterAttempt,
		davx.AfterAttemptTimeout,
		davx.BeforeRedirect,
		davx.BeforeFallback,
		davx.AfterExecutionEnd,
	)
}

// Handle records evt.
func (m *Metrics) Handle(evt davx.Event, e *request.Execution) {
	switch evt {
	case davx.AfterAttempt:
		m.Attempts.WithLabelValues(e.Plan.Method).Inc()
	case davx.AfterAttemptTimeout:
		m.AttemptTimeouts.Inc()
	case davx.BeforeRedirect:
		m.Redirects.WithLabelValues(strconv.Itoa(e.StatusCode())).Inc()
	case davx.BeforeFallback:
		m.Fallbacks.WithLabelValues(fallback.TriggerOf(e).String()).Inc()
	case davx.AfterExecutionEnd:
		code := result.FromExecution[any](e, nil).Code()
		m.Executions.WithLabelValues(e.Plan.Method, code.String()).Inc()
		m.Duration.WithLabelValues(e.Plan.Method).Observe(e.Duration().Seconds())
	}
}
