package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	n, err := New(uuid.New(), TypeGroupBuy, " Group is full ", "Ready for pickup", "/group-buys/1")
	require.NoError(t, err)
	assert.Equal(t, "Group is full", n.Title)
	assert.False(t, n.IsRead)

	n.MarkRead()
	assert.True(t, n.IsRead)

	_, err = New(uuid.Nil, TypeInfo, "x", "", "")
	assert.Equal(t, "INVALID_USER", shared.ErrorCode(err))

	_, err = New(uuid.New(), Type("sms"), "x", "", "")
	assert.Equal(t, "INVALID_NOTIFICATION_TYPE", shared.ErrorCode(err))

	_, err = New(uuid.New(), TypeInfo, "  ", "", "")
	assert.Equal(t, "INVALID_TITLE", shared.ErrorCode(err))
}
