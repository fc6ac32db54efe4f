// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for document analysis.
var (
	tracer = otel.Tracer("beambuddy.engine")
	meter  = otel.Meter("beambuddy.engine")
)

// Metrics for analysis operations.
var (
	analyzeLatency metric.Float64Histogram
	analyzeTotal   metric.Int64Counter
	analyzeMisses  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"engine_analyze_duration_seconds",
			metric.WithDescription("Duration of document analysis operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"engine_analyze_total",
			metric.WithDescription("Total number of analysis operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeMisses, err = meter.Int64Counter(
			"engine_analyze_misses_total",
			metric.WithDescription("Analyses that found no call site or prefix"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordAnalyzeMetrics records metrics for one analysis operation.
func recordAnalyzeMetrics(ctx context.Context, operation string, duration time.Duration, hit bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("hit", hit),
	)
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	if !hit {
		analyzeMisses.Add(ctx, 1,
			metric.WithAttributes(attribute.String("operation", operation)),
		)
	}
}

// startAnalyzeSpan creates a span for an analysis operation.
func startAnalyzeSpan(ctx context.Context, name string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.Int("engine.content_size", contentSize),
		),
	)
}
