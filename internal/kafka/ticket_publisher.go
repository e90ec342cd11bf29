package kafka

import (
	"context"
	"strconv"

	"github.com/Domenick1991/flightbroker/internal/domain"
)

const ticketPublishAttempts = 3

type retryPublisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// TicketPublisher hands ticket notices to the worker, which renders and
// sends the email. The topic is the only delivery path, so writes retry.
type TicketPublisher struct {
	producer retryPublisher
	topic    string
}

func NewTicketPublisher(producer retryPublisher, topic string) *TicketPublisher {
	return &TicketPublisher{producer: producer, topic: topic}
}

func (p *TicketPublisher) SendTicket(ctx context.Context, notice domain.TicketNotice) error {
	return p.producer.PublishWithRetry(ctx, p.topic, strconv.FormatInt(notice.BookingID, 10), notice, ticketPublishAttempts)
}
