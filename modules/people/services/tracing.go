package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const tracerName = "github.com/iota-uz/hr-people/modules/people/services"

// startOperation opens a span for a public operation. The returned func
// records the outcome on the span and in metrics.
func startOperation(ctx context.Context, operation string, auth security.Authorization) (context.Context, func(*error)) {
	started := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "people."+operation,
		trace.WithAttributes(
			attribute.String("hr.org_id", auth.OrgID),
			attribute.String("hr.data_residency", string(auth.DataResidency)),
			attribute.String("hr.data_classification", string(auth.DataClassification)),
			attribute.String("hr.correlation_id", auth.CorrelationID),
		),
	)
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		recordOperation(operation, err, time.Since(started).Seconds())
	}
}
