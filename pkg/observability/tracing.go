package observability

import (
	"context"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer records X-Ray traces for API requests and the work behind
// them, such as tree builds and edge writes
type Tracer struct {
	serviceName string
}

// NewTracer creates a tracer for the named service
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// Middleware opens one segment per request, named after the service
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	return xray.Handler(xray.NewFixedSegmentNamer(t.serviceName), next)
}

// Trace runs fn inside a subsegment and records its error, if any
func (t *Tracer) Trace(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, seg := xray.BeginSubsegment(ctx, name)
	err := fn(ctx)
	if err != nil {
		//nolint:errcheck
		seg.AddError(err)
	}
	seg.Close(nil)
	return err
}

// AddAnnotation puts an indexed annotation, such as the account behind
// a tree build, on the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		//nolint:errcheck
		seg.AddAnnotation(key, value)
	}
}

// RecordError records an error on the current segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		//nolint:errcheck
		seg.AddError(err)
	}
}
