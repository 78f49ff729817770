// Package txscope defines the unit of work shared by application services
// that must change several aggregates atomically.
package txscope

import (
	"context"

	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/notification"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
)

// Repositories provides access to repositories bound to one database transaction
type Repositories interface {
	GroupBuys() groupbuy.GroupBuyRepository
	Participants() groupbuy.ParticipantRepository
	Profiles() identity.ProfileRepository
	Transactions() wallet.TransactionRepository
	Messages() chat.MessageRepository
	Notifications() notification.Repository
	// SaveEvents writes domain events to the outbox inside the same transaction
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}

// TransactionScope runs fn inside a transaction.
// The transaction commits if fn returns nil and rolls back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}
