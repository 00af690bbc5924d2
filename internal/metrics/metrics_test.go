// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package metrics

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{"list localizations", "GET", "/api/v1/projects/{project}/localizations", "200", 25 * time.Millisecond},
		{"bulk create", "POST", "/api/v1/projects/{project}/localizations", "201", 150 * time.Millisecond},
		{"missing field", "POST", "/api/v1/projects/{project}/states", "400", time.Millisecond},
		{"forbidden", "DELETE", "/api/v1/media/{id}", "403", time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode)
			before := testutil.ToFloat64(counter)

			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("requests counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+2 {
		t.Errorf("active requests = %v, want %v", got, before+2)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordParamFailure(t *testing.T) {
	for _, loc := range []string{"path", "query", "body"} {
		for _, reason := range []string{"missing", "invalid"} {
			c := ParamParseFailures.WithLabelValues(loc, reason)
			before := testutil.ToFloat64(c)
			RecordParamFailure(loc, reason)
			if got := testutil.ToFloat64(c); got != before+1 {
				t.Errorf("%s/%s = %v, want %v", loc, reason, got, before+1)
			}
		}
	}
}

func TestRecordEventPublish(t *testing.T) {
	published := EventsPublished.WithLabelValues("create")
	open := EventsFailed.WithLabelValues("breaker_open")
	failed := EventsFailed.WithLabelValues("publish")
	p0, o0, f0 := testutil.ToFloat64(published), testutil.ToFloat64(open), testutil.ToFloat64(failed)

	RecordEventPublish("create", nil)
	RecordEventPublish("create", fmt.Errorf("publish: %w", ErrBreakerOpen))
	RecordEventPublish("create", errors.New("nats: timeout"))

	if got := testutil.ToFloat64(published); got != p0+1 {
		t.Errorf("published = %v, want %v", got, p0+1)
	}
	if got := testutil.ToFloat64(open); got != o0+1 {
		t.Errorf("breaker_open = %v, want %v", got, o0+1)
	}
	if got := testutil.ToFloat64(failed); got != f0+1 {
		t.Errorf("publish failures = %v, want %v", got, f0+1)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("test-breaker", "closed", "open", 2)

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("test-breaker", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v, want >= 1", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	RecordStoreOperation("test_op", 3*time.Millisecond)
	RecordStoreOperation("test_op", 7*time.Millisecond)

	m := &dto.Metric{}
	obs, ok := StoreOperationDuration.WithLabelValues("test_op").(prometheus.Metric)
	if !ok {
		t.Fatal("observer is not a prometheus.Metric")
	}
	if err := obs.Write(m); err != nil {
		t.Fatal(err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
	if sum := m.GetHistogram().GetSampleSum(); sum < 0.009 || sum > 0.011 {
		t.Errorf("sample sum = %v, want about 0.01", sum)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/concurrent", "200")
	before := testutil.ToFloat64(c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordAPIRequest("GET", "/concurrent", "200", time.Millisecond)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(c); got != before+50 {
		t.Errorf("counter = %v, want %v", got, before+50)
	}
}

func TestMetricNames(t *testing.T) {
	collectors := map[string]prometheus.Collector{
		"tator_api_requests_total":               APIRequestsTotal,
		"tator_param_parse_failures_total":       ParamParseFailures,
		"tator_store_operation_duration_seconds": StoreOperationDuration,
		"tator_websocket_connections":            WSConnections,
	}
	for name, c := range collectors {
		ch := make(chan *prometheus.Desc, 1)
		c.Describe(ch)
		desc := <-ch
		if got := desc.String(); !strings.Contains(got, `"`+name+`"`) {
			t.Errorf("descriptor %s does not name %s", got, name)
		}
	}
}
