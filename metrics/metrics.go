// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the Prometheus collectors recorded by the OAuth client.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "toolhive_oauth"

// Endpoint labels.
const (
	EndpointToken    = "token"
	EndpointValidate = "validate"
	EndpointRevoke   = "revoke"
)

// Outcome labels for provider requests.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Collectors groups the client's metrics. A nil *Collectors records nothing.
type Collectors struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	callbackOutcomes *prometheus.CounterVec
}

// NewCollectors creates unregistered collectors.
func NewCollectors() *Collectors {
	return &Collectors{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "Requests sent to the identity provider by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of identity provider requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		callbackOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "callback_outcomes_total",
			Help:      "Authorization callbacks by outcome.",
		}, []string{"outcome"}),
	}
}

// Register registers every collector on reg, or the default registerer when
// reg is nil. Collectors that are already registered are not an error.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, col := range []prometheus.Collector{c.requests, c.requestDuration, c.callbackOutcomes} {
		if err := reg.Register(col); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveRequest records one provider request.
func (c *Collectors) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(endpoint, outcome).Inc()
	c.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveCallback records the terminal outcome of one callback wait, for
// example "received", "timed_out", "cancelled" or "invalid_state".
func (c *Collectors) ObserveCallback(outcome string) {
	if c == nil {
		return
	}
	c.callbackOutcomes.WithLabelValues(outcome).Inc()
}
