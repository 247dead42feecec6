package activity

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
)

const meterName = "github.com/Alijeyrad/helpdesk_backend/internal/activity"

// Metered counts activities by type before handing them to next, which may
// be nil.
type Metered struct {
	next    Publisher
	counter metric.Int64Counter
}

func NewMetered(next Publisher) (*Metered, error) {
	counter, err := otel.Meter(meterName).Int64Counter(
		"helpdesk_activities_total",
		metric.WithDescription("Ticket activities recorded, by type"),
		metric.WithUnit("{activity}"),
	)
	if err != nil {
		return nil, err
	}
	return &Metered{next: next, counter: counter}, nil
}

func (m *Metered) Publish(ctx context.Context, a domain.Activity) error {
	m.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(a.Type))))
	if m.next == nil {
		return nil
	}
	return m.next.Publish(ctx, a)
}
