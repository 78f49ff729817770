package groupbuy

import (
	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeGroupBuy names the aggregate in events and the outbox
const AggregateTypeGroupBuy = "GroupBuy"

// Event type constants
const (
	EventTypeCreated                = "groupbuy.created"
	EventTypeJoined                 = "groupbuy.joined"
	EventTypeParticipationCancelled = "groupbuy.participation_cancelled"
	EventTypeFull                   = "groupbuy.full"
	EventTypeSettled                = "groupbuy.settled"
	EventTypeExpired                = "groupbuy.expired"
	EventTypeRefunded               = "groupbuy.refunded"
	EventTypeCancelled              = "groupbuy.cancelled"
)

// LifecycleEventTypes lists the state-change events subscribers usually care about
var LifecycleEventTypes = []string{
	EventTypeJoined,
	EventTypeParticipationCancelled,
	EventTypeFull,
	EventTypeSettled,
	EventTypeExpired,
	EventTypeRefunded,
	EventTypeCancelled,
}

// Snapshot is the group buy state carried by every lifecycle event
type Snapshot struct {
	GroupBuyID          uuid.UUID `json:"group_buy_id"`
	OrganizerID         uuid.UUID `json:"organizer_id"`
	Title               string    `json:"title"`
	Status              Status    `json:"status"`
	CurrentParticipants int       `json:"current_participants"`
	MaxParticipants     int       `json:"max_participants"`
}

func snapshotOf(g *GroupBuy) Snapshot {
	return Snapshot{
		GroupBuyID:          g.ID,
		OrganizerID:         g.OrganizerID,
		Title:               g.Title,
		Status:              g.Status,
		CurrentParticipants: g.CurrentParticipants,
		MaxParticipants:     g.MaxParticipants,
	}
}

// LifecycleEvent is implemented by all group buy events
type LifecycleEvent interface {
	shared.DomainEvent
	GroupBuy() Snapshot
}

// CreatedEvent is raised when an organizer opens a group buy
type CreatedEvent struct {
	shared.BaseDomainEvent
	Snapshot
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(g *GroupBuy) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
		Category:        g.Category,
		Price:           g.Price,
	}
}

// GroupBuy returns the state snapshot
func (e *CreatedEvent) GroupBuy() Snapshot { return e.Snapshot }

// JoinedEvent is raised when a participant joins
type JoinedEvent struct {
	shared.BaseDomainEvent
	Snapshot
	ParticipantID uuid.UUID       `json:"participant_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Quantity      int             `json:"quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewJoinedEvent creates a new JoinedEvent
func NewJoinedEvent(g *GroupBuy, p *Participant) *JoinedEvent {
	return &JoinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJoined, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
		ParticipantID:   p.ID,
		UserID:          p.UserID,
		Quantity:        p.Quantity,
		TotalAmount:     p.TotalAmount,
	}
}

// GroupBuy returns the state snapshot
func (e *JoinedEvent) GroupBuy() Snapshot { return e.Snapshot }

// ParticipationCancelledEvent is raised when a participant leaves before the group forms
type ParticipationCancelledEvent struct {
	shared.BaseDomainEvent
	Snapshot
	ParticipantID uuid.UUID       `json:"participant_id"`
	UserID        uuid.UUID       `json:"user_id"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

// NewParticipationCancelledEvent creates a new ParticipationCancelledEvent
func NewParticipationCancelledEvent(g *GroupBuy, p *Participant) *ParticipationCancelledEvent {
	return &ParticipationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeParticipationCancelled, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
		ParticipantID:   p.ID,
		UserID:          p.UserID,
		RefundAmount:    p.TotalAmount,
	}
}

// GroupBuy returns the state snapshot
func (e *ParticipationCancelledEvent) GroupBuy() Snapshot { return e.Snapshot }

// FullEvent is raised when the last slot is taken
type FullEvent struct {
	shared.BaseDomainEvent
	Snapshot
}

// NewFullEvent creates a new FullEvent
func NewFullEvent(g *GroupBuy) *FullEvent {
	return &FullEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFull, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
	}
}

// GroupBuy returns the state snapshot
func (e *FullEvent) GroupBuy() Snapshot { return e.Snapshot }

// SettledEvent is raised when the organizer is paid and orders complete
type SettledEvent struct {
	shared.BaseDomainEvent
	Snapshot
	Payout             decimal.Decimal `json:"payout"`
	ParticipantUserIDs []uuid.UUID     `json:"participant_user_ids"`
}

// NewSettledEvent creates a new SettledEvent
func NewSettledEvent(g *GroupBuy, payout decimal.Decimal, userIDs []uuid.UUID) *SettledEvent {
	return &SettledEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeSettled, AggregateTypeGroupBuy, g.ID),
		Snapshot:           snapshotOf(g),
		Payout:             payout,
		ParticipantUserIDs: userIDs,
	}
}

// GroupBuy returns the state snapshot
func (e *SettledEvent) GroupBuy() Snapshot { return e.Snapshot }

// ExpiredEvent is raised when the deadline passes below the minimum
type ExpiredEvent struct {
	shared.BaseDomainEvent
	Snapshot
	MinParticipants int `json:"min_participants"`
}

// NewExpiredEvent creates a new ExpiredEvent
func NewExpiredEvent(g *GroupBuy) *ExpiredEvent {
	return &ExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpired, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
		MinParticipants: g.MinParticipants,
	}
}

// GroupBuy returns the state snapshot
func (e *ExpiredEvent) GroupBuy() Snapshot { return e.Snapshot }

// Refund describes one returned payment
type Refund struct {
	ParticipantID uuid.UUID       `json:"participant_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
}

func refundsOf(participants []*Participant) []Refund {
	out := make([]Refund, len(participants))
	for i, p := range participants {
		out[i] = Refund{ParticipantID: p.ID, UserID: p.UserID, Amount: p.TotalAmount}
	}
	return out
}

// RefundedEvent is raised when all payments of an expired group buy were returned
type RefundedEvent struct {
	shared.BaseDomainEvent
	Snapshot
	Refunds []Refund `json:"refunds"`
}

// NewRefundedEvent creates a new RefundedEvent
func NewRefundedEvent(g *GroupBuy, refunded []*Participant) *RefundedEvent {
	return &RefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefunded, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
		Refunds:         refundsOf(refunded),
	}
}

// GroupBuy returns the state snapshot
func (e *RefundedEvent) GroupBuy() Snapshot { return e.Snapshot }

// CancelledEvent is raised when the organizer withdraws the listing
type CancelledEvent struct {
	shared.BaseDomainEvent
	Snapshot
	Refunds []Refund `json:"refunds"`
}

// NewCancelledEvent creates a new CancelledEvent
func NewCancelledEvent(g *GroupBuy, refunded []*Participant) *CancelledEvent {
	return &CancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCancelled, AggregateTypeGroupBuy, g.ID),
		Snapshot:        snapshotOf(g),
		Refunds:         refundsOf(refunded),
	}
}

// GroupBuy returns the state snapshot
func (e *CancelledEvent) GroupBuy() Snapshot { return e.Snapshot }
