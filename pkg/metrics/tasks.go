// Copyright 2026 Pressline Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	taskOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_outcomes_total",
			Help: "Task run outcomes by kind and status",
		},
		[]string{"task_type", "status"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_duration_seconds",
			Help:    "Task handler execution time in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"task_type"},
	)

	taskRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_retries_total",
			Help: "Retries enqueued or suppressed by reason",
		},
		[]string{"task_type", "decision"},
	)

	lockContention = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_lock_contention_total",
			Help: "Lease acquisitions rejected because the lease was held",
		},
		[]string{"task_type"},
	)
)

// RegisterTaskMetrics registers the engine task metrics on the registry.
func RegisterTaskMetrics(registry *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{taskOutcomes, taskDuration, taskRetries, lockContention} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveTaskOutcome records one finished task run.
func ObserveTaskOutcome(taskType, status string, seconds float64) {
	taskOutcomes.WithLabelValues(taskType, status).Inc()
	taskDuration.WithLabelValues(taskType).Observe(seconds)
}

// ObserveRetryDecision records a retry enqueued/suppressed decision.
func ObserveRetryDecision(taskType, decision string) {
	taskRetries.WithLabelValues(taskType, decision).Inc()
}

// ObserveLockContention records a rejected lease acquisition.
func ObserveLockContention(taskType string) {
	lockContention.WithLabelValues(taskType).Inc()
}
