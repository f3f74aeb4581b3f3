package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fundo/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDepositRequested EventType = "deposit_requested"
	EventTypeBoxBalanceChange EventType = "box_balance_change"
	EventTypeEarningsPosted   EventType = "earnings_posted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DepositRequestedEvent is emitted when a cotista registers a PIX deposit request
type DepositRequestedEvent struct {
	CotistaID int64
	DepositID int64
	TxID      string
	Amount    decimal.Decimal
}

func (e DepositRequestedEvent) Type() EventType {
	return EventTypeDepositRequested
}

// BoxBalanceChangeEvent is emitted for every savings box balance change
type BoxBalanceChangeEvent struct {
	BoxID         int64
	CotistaID     int64
	MovementType  models.MovementType
	ChangeAmount  decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

func (e BoxBalanceChangeEvent) Type() EventType {
	return EventTypeBoxBalanceChange
}

// EarningsPostedEvent is emitted once per completed earnings batch run
type EarningsPostedEvent struct {
	Processed   int
	Failed      int
	RateApplied float64
}

func (e EarningsPostedEvent) Type() EventType {
	return EventTypeEarningsPosted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the caller
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit. Events are emitted on a
// background context so they outlive the request's transaction scope.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a rollback to drop pending events.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
