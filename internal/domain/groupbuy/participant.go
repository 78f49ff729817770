package groupbuy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxQuantityPerParticipant caps how many units one participant may take
const MaxQuantityPerParticipant = 99

// Participant is one user's order within a group buy
type Participant struct {
	shared.BaseEntity
	GroupBuyID  uuid.UUID
	UserID      uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	Status      ParticipantStatus
	JoinedAt    time.Time
}

func newParticipant(groupBuyID, userID uuid.UUID, quantity int, unitPrice decimal.Decimal, now time.Time) *Participant {
	p := &Participant{
		BaseEntity:  shared.NewBaseEntity(),
		GroupBuyID:  groupBuyID,
		UserID:      userID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Status:      ParticipantStatusConfirmed,
		JoinedAt:    now,
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

func (p *Participant) transition(target ParticipantStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move participation from %s to %s", p.Status, target))
	}
	p.Status = target
	p.Touch()
	return nil
}

// Complete marks the order fulfilled after settlement
func (p *Participant) Complete() error {
	return p.transition(ParticipantStatusCompleted)
}

// Cancel marks the order withdrawn by the participant
func (p *Participant) Cancel() error {
	return p.transition(ParticipantStatusCancelled)
}

// Refund marks the order's payment returned
func (p *Participant) Refund() error {
	return p.transition(ParticipantStatusRefunded)
}
