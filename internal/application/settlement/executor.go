// Package settlement runs the lifecycle jobs that close group buys:
// expiring them at the deadline, paying out organizers and refunding participants.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	groupbuyapp "github.com/groupbuy/backend/internal/application/groupbuy"
	"github.com/groupbuy/backend/internal/application/txscope"
	walletapp "github.com/groupbuy/backend/internal/application/wallet"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/internal/infrastructure/scheduler"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Outcome describes what a job did to its group buy
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeExpired  Outcome = "expired"
	OutcomeSettled  Outcome = "settled"
	OutcomeRefunded Outcome = "refunded"
)

// Enqueuer schedules a follow-up job
type Enqueuer interface {
	Enqueue(kind scheduler.JobKind, groupBuyID uuid.UUID) error
}

// Executor implements scheduler.JobExecutor for group buy lifecycle jobs.
// Each job locks its group buy and re-checks the status inside one transaction,
// so running a job twice has no further effect.
type Executor struct {
	txScope  txscope.TransactionScope
	followUp Enqueuer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExecutor creates a new Executor
func NewExecutor(txScope txscope.TransactionScope, logger *zap.Logger) *Executor {
	return &Executor{
		txScope: txScope,
		logger:  logger,
		now:     time.Now,
	}
}

// SetFollowUp makes an expiry enqueue its refund job right away
func (e *Executor) SetFollowUp(q Enqueuer) {
	e.followUp = q
}

// SetClock overrides the time source
func (e *Executor) SetClock(now func() time.Time) {
	e.now = now
}

// Execute dispatches the job by kind
func (e *Executor) Execute(ctx context.Context, job *scheduler.Job) error {
	var (
		outcome Outcome
		err     error
	)
	labels := map[string]string{telemetry.ProfilingLabelJobKind: string(job.Kind)}
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		switch job.Kind {
		case scheduler.JobKindExpire:
			outcome, err = e.Expire(ctx, job.GroupBuyID)
		case scheduler.JobKindSettle:
			outcome, err = e.Settle(ctx, job.GroupBuyID)
		case scheduler.JobKindRefund:
			outcome, err = e.Refund(ctx, job.GroupBuyID)
		default:
			err = fmt.Errorf("unknown job kind %q", job.Kind)
		}
	})
	if err != nil {
		return err
	}

	if outcome == OutcomeExpired && e.followUp != nil {
		if qerr := e.followUp.Enqueue(scheduler.JobKindRefund, job.GroupBuyID); qerr != nil {
			// the next sweep picks it up
			e.logger.Warn("Failed to enqueue refund after expiry",
				zap.String("group_buy_id", job.GroupBuyID.String()),
				zap.Error(qerr),
			)
		}
	}
	return nil
}

// Expire closes an ACTIVE group buy whose deadline has passed.
// A group that reached its minimum is settled in the same transaction.
func (e *Executor) Expire(ctx context.Context, id uuid.UUID) (Outcome, error) {
	return e.run(ctx, scheduler.JobKindExpire, id, func(repos txscope.Repositories, g *groupbuy.GroupBuy, now time.Time) (Outcome, error) {
		if g.Status != groupbuy.StatusActive || !g.IsExpired(now) {
			return OutcomeSkipped, nil
		}
		settle, err := g.Expire(now)
		if err != nil {
			return OutcomeSkipped, err
		}
		if settle {
			if err := e.settle(ctx, repos, g, now); err != nil {
				return OutcomeSkipped, err
			}
			return OutcomeSettled, nil
		}
		return OutcomeExpired, nil
	})
}

// Settle pays the organizer of a FULL group buy and completes its participations
func (e *Executor) Settle(ctx context.Context, id uuid.UUID) (Outcome, error) {
	return e.run(ctx, scheduler.JobKindSettle, id, func(repos txscope.Repositories, g *groupbuy.GroupBuy, now time.Time) (Outcome, error) {
		if g.Status != groupbuy.StatusFull {
			return OutcomeSkipped, nil
		}
		if err := e.settle(ctx, repos, g, now); err != nil {
			return OutcomeSkipped, err
		}
		return OutcomeSettled, nil
	})
}

// Refund returns every confirmed payment of an EXPIRED group buy
func (e *Executor) Refund(ctx context.Context, id uuid.UUID) (Outcome, error) {
	return e.run(ctx, scheduler.JobKindRefund, id, func(repos txscope.Repositories, g *groupbuy.GroupBuy, now time.Time) (Outcome, error) {
		if g.Status != groupbuy.StatusExpired {
			return OutcomeSkipped, nil
		}
		participants, err := repos.Participants().FindByGroupBuy(ctx, g.ID, groupbuy.HoldingParticipantStatuses...)
		if err != nil {
			return OutcomeSkipped, fmt.Errorf("load participants: %w", err)
		}
		refunded, err := g.Refund(participants, now)
		if err != nil {
			return OutcomeSkipped, err
		}
		if err := groupbuyapp.RefundParticipants(ctx, repos, g, participants, refunded, "Refund for expired group buy: "+g.Title); err != nil {
			return OutcomeSkipped, err
		}
		return OutcomeRefunded, nil
	})
}

type transition func(repos txscope.Repositories, g *groupbuy.GroupBuy, now time.Time) (Outcome, error)

// run loads and locks the group buy, applies fn and persists the result with its events
func (e *Executor) run(ctx context.Context, kind scheduler.JobKind, id uuid.UUID, fn transition) (Outcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", string(kind),
		telemetry.SpanAttrGroupBuyID, id,
		telemetry.SpanAttrJobKind, string(kind),
	)
	defer span.End()

	outcome := OutcomeSkipped
	err := e.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		g, err := repos.GroupBuys().FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				outcome = OutcomeSkipped
				return nil
			}
			return fmt.Errorf("lock group buy: %w", err)
		}
		outcome, err = fn(repos, g, e.now())
		if err != nil || outcome == OutcomeSkipped {
			return err
		}
		if err := repos.GroupBuys().SaveWithLock(ctx, g); err != nil {
			return err
		}
		if err := repos.SaveEvents(ctx, g.GetDomainEvents()...); err != nil {
			return err
		}
		g.ClearDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return OutcomeSkipped, err
	}

	telemetry.SetAttributes(span, "settlement.outcome", string(outcome))
	if outcome == OutcomeSkipped {
		e.logger.Debug("Lifecycle job skipped",
			zap.String("kind", string(kind)),
			zap.String("group_buy_id", id.String()),
		)
	} else {
		e.logger.Info("Lifecycle job applied",
			zap.String("kind", string(kind)),
			zap.String("group_buy_id", id.String()),
			zap.String("outcome", string(outcome)),
		)
	}
	return outcome, nil
}

// settle completes confirmed participations and credits the organizer with their total
func (e *Executor) settle(ctx context.Context, repos txscope.Repositories, g *groupbuy.GroupBuy, now time.Time) error {
	participants, err := repos.Participants().FindByGroupBuy(ctx, g.ID, groupbuy.ParticipantStatusConfirmed)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	payout, err := g.Settle(participants, now)
	if err != nil {
		return err
	}
	for _, p := range participants {
		if err := repos.Participants().Update(ctx, p); err != nil {
			return fmt.Errorf("complete participant %s: %w", p.ID, err)
		}
	}
	if !payout.IsPositive() {
		return nil
	}
	_, err = walletapp.Post(ctx, repos, walletapp.Posting{
		UserID:      g.OrganizerID,
		Type:        wallet.TransactionTypeSettlement,
		Amount:      payout,
		Description: "Settlement for group buy: " + g.Title,
		ReferenceID: &g.ID,
	})
	if err != nil {
		return fmt.Errorf("pay organizer: %w", err)
	}
	return nil
}

var _ scheduler.JobExecutor = (*Executor)(nil)
