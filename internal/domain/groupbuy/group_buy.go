package groupbuy

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	MinMaxParticipants = 2
	MaxMaxParticipants = 500
)

// Domain errors raised by the group buy aggregate
var (
	ErrNotFound        = shared.NewDomainError("GROUP_BUY_NOT_FOUND", "Group buy not found")
	ErrNotActive       = shared.NewDomainError("GROUP_BUY_NOT_ACTIVE", "Group buy is not accepting participants")
	ErrExpired         = shared.NewDomainError("GROUP_BUY_EXPIRED", "Group buy has expired")
	ErrFull            = shared.NewDomainError("GROUP_BUY_FULL", "Group buy is already full")
	ErrCannotJoinOwn   = shared.NewDomainError("CANNOT_JOIN_OWN", "Organizers cannot join their own group buy")
	ErrAlreadyJoined   = shared.NewDomainError("ALREADY_JOINED", "You have already joined this group buy")
	ErrNotOrganizer    = shared.NewDomainError("NOT_ORGANIZER", "Only the organizer can modify this group buy")
	ErrNotExpiredYet   = shared.NewDomainError("GROUP_BUY_NOT_EXPIRED", "Group buy has not reached its deadline")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity must be between 1 and %d", MaxQuantityPerParticipant))
)

// GroupBuy is a listing that participants join until it fills up or expires.
// It is the aggregate root for participation counting and settlement.
type GroupBuy struct {
	shared.BaseAggregateRoot
	OrganizerID         uuid.UUID
	Title               string
	Description         string
	Category            string
	ImageURL            string
	Price               decimal.Decimal
	OriginalPrice       *decimal.Decimal
	CurrentParticipants int
	MinParticipants     int
	MaxParticipants     int
	Location            string
	PickupLocationID    *uuid.UUID
	ExpiresAt           time.Time
	Status              Status
	SettledAt           *time.Time
}

// Draft carries the organizer's input for a new group buy
type Draft struct {
	OrganizerID      uuid.UUID
	Title            string
	Description      string
	Category         string
	ImageURL         string
	Price            decimal.Decimal
	OriginalPrice    *decimal.Decimal
	MinParticipants  int // 0 means equal to MaxParticipants
	MaxParticipants  int
	Location         string
	PickupLocationID *uuid.UUID
	ExpiresAt        time.Time
}

// New validates a draft and opens a group buy.
// maxDuration bounds how far in the future the deadline may lie; zero disables the bound.
func New(d Draft, now time.Time, maxDuration time.Duration) (*GroupBuy, error) {
	if d.OrganizerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZER", "Organizer is required")
	}
	title := strings.TrimSpace(d.Title)
	if title == "" || len([]rune(title)) > 100 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title must be 1 to 100 characters")
	}
	if strings.TrimSpace(d.Category) == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if err := validatePrices(d.Price, d.OriginalPrice); err != nil {
		return nil, err
	}
	minP, err := validateParticipantBounds(d.MinParticipants, d.MaxParticipants, 0)
	if err != nil {
		return nil, err
	}
	if err := validateDeadline(d.ExpiresAt, now, maxDuration); err != nil {
		return nil, err
	}

	g := &GroupBuy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrganizerID:       d.OrganizerID,
		Title:             title,
		Description:       strings.TrimSpace(d.Description),
		Category:          strings.TrimSpace(d.Category),
		ImageURL:          strings.TrimSpace(d.ImageURL),
		Price:             d.Price,
		OriginalPrice:     d.OriginalPrice,
		MinParticipants:   minP,
		MaxParticipants:   d.MaxParticipants,
		Location:          strings.TrimSpace(d.Location),
		PickupLocationID:  d.PickupLocationID,
		ExpiresAt:         d.ExpiresAt,
		Status:            StatusActive,
	}
	g.CreatedAt = now
	g.UpdatedAt = now

	g.AddDomainEvent(NewCreatedEvent(g))
	return g, nil
}

// IsExpired reports whether the deadline has passed
func (g *GroupBuy) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// IsFull reports whether every slot is taken
func (g *GroupBuy) IsFull() bool {
	return g.CurrentParticipants >= g.MaxParticipants
}

// RemainingSlots returns how many more participants may join
func (g *GroupBuy) RemainingSlots() int {
	if g.IsFull() {
		return 0
	}
	return g.MaxParticipants - g.CurrentParticipants
}

// IsOrganizer reports whether userID organizes this group buy
func (g *GroupBuy) IsOrganizer(userID uuid.UUID) bool {
	return g.OrganizerID == userID
}

// Join admits userID with the given quantity and returns the new participation.
// The caller must have checked that the user holds no other participation.
func (g *GroupBuy) Join(userID uuid.UUID, quantity int, now time.Time) (*Participant, error) {
	if g.Status != StatusActive {
		return nil, ErrNotActive
	}
	if g.IsExpired(now) {
		return nil, ErrExpired
	}
	if g.IsFull() {
		return nil, ErrFull
	}
	if g.IsOrganizer(userID) {
		return nil, ErrCannotJoinOwn
	}
	if quantity < 1 || quantity > MaxQuantityPerParticipant {
		return nil, ErrInvalidQuantity
	}

	p := newParticipant(g.ID, userID, quantity, g.Price, now)
	g.CurrentParticipants++
	g.UpdatedAt = now
	g.AddDomainEvent(NewJoinedEvent(g, p))

	if g.IsFull() {
		g.Status = StatusFull
		g.AddDomainEvent(NewFullEvent(g))
	}
	return p, nil
}

// Leave withdraws a participation while the group buy is still forming
func (g *GroupBuy) Leave(p *Participant, now time.Time) error {
	if p.GroupBuyID != g.ID {
		return shared.NewDomainError("INVALID_PARTICIPANT", "Participation does not belong to this group buy")
	}
	if g.Status != StatusActive {
		return shared.NewDomainError("CANNOT_LEAVE", "No refunds after the group has formed")
	}
	if err := p.Cancel(); err != nil {
		return err
	}
	if g.CurrentParticipants > 0 {
		g.CurrentParticipants--
	}
	g.UpdatedAt = now
	g.AddDomainEvent(NewParticipationCancelledEvent(g, p))
	return nil
}

// Expire handles a passed deadline. It returns settle=true when enough
// participants joined, in which case the caller must Settle instead;
// otherwise the group buy moves to EXPIRED awaiting refunds.
func (g *GroupBuy) Expire(now time.Time) (settle bool, err error) {
	if g.Status != StatusActive {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire group buy in %s status", g.Status))
	}
	if !g.IsExpired(now) {
		return false, ErrNotExpiredYet
	}
	if g.CurrentParticipants > 0 && g.CurrentParticipants >= g.MinParticipants {
		return true, nil
	}
	g.Status = StatusExpired
	g.UpdatedAt = now
	g.AddDomainEvent(NewExpiredEvent(g))
	return false, nil
}

// Settle completes every confirmed participation and returns the organizer payout.
// An ACTIVE group buy may settle only after its deadline with the minimum met.
func (g *GroupBuy) Settle(participants []*Participant, now time.Time) (decimal.Decimal, error) {
	if !g.Status.CanTransitionTo(StatusSettled) {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle group buy in %s status", g.Status))
	}
	if g.Status == StatusActive {
		if !g.IsExpired(now) {
			return decimal.Zero, ErrNotExpiredYet
		}
		if g.CurrentParticipants == 0 || g.CurrentParticipants < g.MinParticipants {
			return decimal.Zero, shared.NewDomainError("MINIMUM_NOT_MET", "Not enough participants to settle")
		}
	}

	payout := decimal.Zero
	userIDs := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		if p.GroupBuyID != g.ID || p.Status != ParticipantStatusConfirmed {
			continue
		}
		if err := p.Complete(); err != nil {
			return decimal.Zero, err
		}
		payout = payout.Add(p.TotalAmount)
		userIDs = append(userIDs, p.UserID)
	}

	g.Status = StatusSettled
	g.SettledAt = &now
	g.UpdatedAt = now
	g.AddDomainEvent(NewSettledEvent(g, payout, userIDs))
	return payout, nil
}

// Refund returns every confirmed payment of an expired group buy.
// It returns the participations whose payment must be credited back.
func (g *GroupBuy) Refund(participants []*Participant, now time.Time) ([]*Participant, error) {
	if !g.Status.CanTransitionTo(StatusRefunded) {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund group buy in %s status", g.Status))
	}
	refunded, err := refundAll(g.ID, participants)
	if err != nil {
		return nil, err
	}
	g.Status = StatusRefunded
	g.UpdatedAt = now
	g.AddDomainEvent(NewRefundedEvent(g, refunded))
	return refunded, nil
}

// Cancel withdraws the listing on behalf of the organizer and refunds everyone.
func (g *GroupBuy) Cancel(organizerID uuid.UUID, participants []*Participant, now time.Time) ([]*Participant, error) {
	if !g.IsOrganizer(organizerID) {
		return nil, ErrNotOrganizer
	}
	if !g.Status.CanTransitionTo(StatusCancelled) {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel group buy in %s status", g.Status))
	}
	refunded, err := refundAll(g.ID, participants)
	if err != nil {
		return nil, err
	}
	g.Status = StatusCancelled
	g.UpdatedAt = now
	g.AddDomainEvent(NewCancelledEvent(g, refunded))
	return refunded, nil
}

func refundAll(groupBuyID uuid.UUID, participants []*Participant) ([]*Participant, error) {
	refunded := make([]*Participant, 0, len(participants))
	for _, p := range participants {
		if p.GroupBuyID != groupBuyID || !p.Status.IsHolding() {
			continue
		}
		if p.Status == ParticipantStatusPending {
			if err := p.Cancel(); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.Refund(); err != nil {
			return nil, err
		}
		refunded = append(refunded, p)
	}
	return refunded, nil
}

// Update carries optional organizer edits; nil fields are left unchanged
type Update struct {
	Title            *string
	Description      *string
	ImageURL         *string
	Price            *decimal.Decimal
	OriginalPrice    *decimal.Decimal
	MinParticipants  *int
	MaxParticipants  *int
	Location         *string
	PickupLocationID *uuid.UUID
	ExpiresAt        *time.Time
}

// ApplyUpdate edits an ACTIVE group buy on behalf of its organizer
func (g *GroupBuy) ApplyUpdate(organizerID uuid.UUID, u Update, now time.Time, maxDuration time.Duration) error {
	if !g.IsOrganizer(organizerID) {
		return ErrNotOrganizer
	}
	if g.Status != StatusActive {
		return ErrNotActive
	}

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" || len([]rune(title)) > 100 {
			return shared.NewDomainError("INVALID_TITLE", "Title must be 1 to 100 characters")
		}
		g.Title = title
	}
	if u.Description != nil {
		g.Description = strings.TrimSpace(*u.Description)
	}
	if u.ImageURL != nil {
		g.ImageURL = strings.TrimSpace(*u.ImageURL)
	}

	price, original := g.Price, g.OriginalPrice
	if u.Price != nil && !u.Price.Equal(g.Price) {
		if g.CurrentParticipants > 0 {
			return shared.NewDomainError("PRICE_LOCKED", "Price cannot change after someone has joined")
		}
		price = *u.Price
	}
	if u.OriginalPrice != nil {
		original = u.OriginalPrice
	}
	if err := validatePrices(price, original); err != nil {
		return err
	}
	g.Price, g.OriginalPrice = price, original

	if u.MinParticipants != nil || u.MaxParticipants != nil {
		minP, maxP := g.MinParticipants, g.MaxParticipants
		if u.MaxParticipants != nil {
			maxP = *u.MaxParticipants
		}
		if u.MinParticipants != nil {
			minP = *u.MinParticipants
		}
		if u.MinParticipants == nil && minP > maxP {
			minP = maxP
		}
		validated, err := validateParticipantBounds(minP, maxP, g.CurrentParticipants)
		if err != nil {
			return err
		}
		g.MinParticipants, g.MaxParticipants = validated, maxP
		if g.CurrentParticipants > 0 && g.IsFull() {
			g.Status = StatusFull
			g.AddDomainEvent(NewFullEvent(g))
		}
	}

	if u.Location != nil {
		g.Location = strings.TrimSpace(*u.Location)
	}
	if u.PickupLocationID != nil {
		id := *u.PickupLocationID
		g.PickupLocationID = &id
	}
	if u.ExpiresAt != nil {
		if err := validateDeadline(*u.ExpiresAt, now, maxDuration); err != nil {
			return err
		}
		g.ExpiresAt = *u.ExpiresAt
	}

	g.UpdatedAt = now
	return nil
}

func validatePrices(price decimal.Decimal, original *decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	if original != nil && original.LessThan(price) {
		return shared.NewDomainError("INVALID_ORIGINAL_PRICE", "Original price cannot be lower than the group price")
	}
	return nil
}

func validateParticipantBounds(minP, maxP, current int) (int, error) {
	if maxP < MinMaxParticipants || maxP > MaxMaxParticipants {
		return 0, shared.NewDomainError("INVALID_MAX_PARTICIPANTS",
			fmt.Sprintf("Max participants must be between %d and %d", MinMaxParticipants, MaxMaxParticipants))
	}
	if maxP < current {
		return 0, shared.NewDomainError("INVALID_MAX_PARTICIPANTS", "Max participants cannot be below current participants")
	}
	if minP == 0 {
		minP = maxP
	}
	if minP < 1 || minP > maxP {
		return 0, shared.NewDomainError("INVALID_MIN_PARTICIPANTS", "Min participants must be between 1 and max participants")
	}
	return minP, nil
}

func validateDeadline(expiresAt, now time.Time, maxDuration time.Duration) error {
	if !expiresAt.After(now) {
		return shared.NewDomainError("INVALID_EXPIRES_AT", "Deadline must be in the future")
	}
	if maxDuration > 0 && expiresAt.Sub(now) > maxDuration {
		return shared.NewDomainError("INVALID_EXPIRES_AT", fmt.Sprintf("Deadline cannot be more than %s away", maxDuration))
	}
	return nil
}
