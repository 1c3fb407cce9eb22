package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes application metrics to CloudWatch. A nil client
// turns every method into a no-op, which keeps local runs quiet.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordCommandExecution records duration and outcome of a command
func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	if m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	dimensions := []types.Dimension{
		{
			Name:  aws.String("CommandName"),
			Value: aws.String(commandName),
		},
		{
			Name:  aws.String("Status"),
			Value: aws.String(status),
		},
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("CommandExecution"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(time.Now()),
		},
		{
			MetricName: aws.String("CommandCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
	})
}

// RecordLatency records latency for any operation
func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration) {
	if m.client == nil {
		return
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("OperationLatency"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("Operation"),
					Value: aws.String(operation),
				},
			},
			Value:     aws.Float64(float64(latency.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// RecordError records error occurrences
func (m *Metrics) RecordError(ctx context.Context, errorType string, errorCode string) {
	if m.client == nil {
		return
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("Errors"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("ErrorType"),
					Value: aws.String(errorType),
				},
				{
					Name:  aws.String("ErrorCode"),
					Value: aws.String(errorCode),
				},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// Increment bumps a counter metric with a label dimension
func (m *Metrics) Increment(metric, label string) {
	if m.client == nil {
		return
	}

	m.put(context.Background(), []types.MetricDatum{
		{
			MetricName: aws.String(metric),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("Label"),
					Value: aws.String(label),
				},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// StartTimer starts a timer that records a latency metric when stopped
func (m *Metrics) StartTimer(metric, label string) *MetricTimer {
	return &MetricTimer{
		metrics: m,
		metric:  metric,
		label:   label,
		start:   time.Now(),
	}
}

// MetricTimer measures a span of time for one labelled metric
type MetricTimer struct {
	metrics *Metrics
	metric  string
	label   string
	start   time.Time
}

// Stop records the elapsed time
func (t *MetricTimer) Stop() {
	elapsed := time.Since(t.start)
	if t.metrics.client == nil {
		return
	}

	t.metrics.put(context.Background(), []types.MetricDatum{
		{
			MetricName: aws.String(t.metric),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("Label"),
					Value: aws.String(t.label),
				},
			},
			Value:     aws.Float64(float64(elapsed.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// put sends metric data to CloudWatch. Failures are swallowed; metrics
// must never fail the operation they observe.
func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}

	//nolint:errcheck
	m.client.PutMetricData(ctx, input)
}
