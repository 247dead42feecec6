package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
)

// Conn is the slice of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

// Publisher sends every recorded activity to NATS as JSON on
// <prefix>.activity.<type>.<ticketId>.
type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

func (p *Publisher) Publish(_ context.Context, a domain.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode activity %d: %w", a.ID, err)
	}
	subj := ActivitySubject(p.prefix, a)
	if err := p.conn.Publish(subj, data); err != nil {
		return fmt.Errorf("publish %s: %w", subj, err)
	}
	return nil
}

func ActivitySubject(prefix string, a domain.Activity) string {
	ticket := "none"
	if a.TicketID != nil {
		ticket = strconv.Itoa(*a.TicketID)
	}
	return prefix + ".activity." + string(a.Type) + "." + ticket
}

// ActivityWildcard matches every activity subject under prefix.
func ActivityWildcard(prefix string) string {
	return prefix + ".activity.>"
}

func Decode(data []byte) (domain.Activity, error) {
	var a domain.Activity
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Activity{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if !a.Type.Valid() {
		return domain.Activity{}, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, a.Type)
	}
	return a, nil
}
