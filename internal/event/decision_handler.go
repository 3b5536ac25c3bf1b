package event

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier tells a customer about a decision.
type Notifier interface {
	Notify(ctx context.Context, payload EligibilityEventPayload) error
}

// DeliveryObserver is told how each delivery was settled.
type DeliveryObserver interface {
	ObserveDelivery(routingKey, result string)
}

const (
	DeliveryAcked    = "acked"
	DeliveryRejected = "rejected"
	DeliveryFailed   = "failed"
)

type DecisionEventHandler struct {
	notifier Notifier
	observer DeliveryObserver
	logger   *slog.Logger
}

func NewDecisionEventHandler(notifier Notifier, observer DeliveryObserver, logger *slog.Logger) *DecisionEventHandler {
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	return &DecisionEventHandler{
		notifier: notifier,
		observer: observer,
		logger:   logger.With("component", "DecisionEventHandler"),
	}
}

// HandleDelivery settles every delivery exactly once. Malformed or unknown
// messages are rejected without requeue; notifier failures are requeued.
func (h *DecisionEventHandler) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	logCtx := h.logger.With(slog.Uint64("deliveryTag", d.DeliveryTag), slog.String("routingKey", d.RoutingKey))

	result := h.handle(ctx, logCtx, d)
	if h.observer != nil {
		h.observer.ObserveDelivery(d.RoutingKey, result)
	}
}

func (h *DecisionEventHandler) handle(ctx context.Context, logCtx *slog.Logger, d amqp.Delivery) string {
	switch d.RoutingKey {
	case routingKeyEligibilityApproved, routingKeyEligibilityRejected:
	default:
		logCtx.WarnContext(ctx, "Received message with unknown routing key. Discarding.")
		_ = d.Reject(false)
		return DeliveryRejected
	}

	var evt EligibilityDecidedEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		logCtx.ErrorContext(ctx, "Failed to unmarshal EligibilityDecidedEvent", "error", err)
		_ = d.Nack(false, false)
		return DeliveryRejected
	}
	if evt.routingKey() != d.RoutingKey {
		logCtx.ErrorContext(ctx, "Routing key does not match event outcome. Discarding.", "eligible", evt.Payload.Eligible)
		_ = d.Nack(false, false)
		return DeliveryRejected
	}

	logCtx = logCtx.With(slog.String("decisionID", evt.Payload.DecisionID))
	if err := h.notifier.Notify(ctx, evt.Payload); err != nil {
		logCtx.ErrorContext(ctx, "Failed to notify customer, requeueing", "error", err)
		_ = d.Nack(false, true)
		return DeliveryFailed
	}

	if err := d.Ack(false); err != nil {
		logCtx.ErrorContext(ctx, "Failed to acknowledge message after notification", "error", err)
		return DeliveryFailed
	}
	logCtx.InfoContext(ctx, "Customer notified of decision")
	return DeliveryAcked
}

// WriterNotifier prints one line per decision.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

func (n *WriterNotifier) Notify(_ context.Context, p EligibilityEventPayload) error {
	line := fmt.Sprintf("%s has been %s", p.CustomerName, p.Outcome)
	if len(p.FailedChecks) > 0 {
		line += " (failed: " + strings.Join(p.FailedChecks, ", ") + ")"
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.out, line)
	return err
}
