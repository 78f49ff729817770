package handler

import (
	"net/http"
	"testing"

	walletapp "github.com/groupbuy/backend/internal/application/wallet"
	"github.com/groupbuy/backend/internal/interfaces/http/middleware"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletHandler_Deposit(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice", 0)

	w := s.do(t, http.MethodPost, "/wallet/deposit", map[string]any{"amount": "25.50"}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := testutil.DecodeData[walletapp.TransactionResponse](t, w)
	assert.Equal(t, "DEPOSIT", tx.Type)
	assert.Equal(t, "0", tx.BalanceBefore.String())
	assert.Equal(t, "25.5", tx.BalanceAfter.String())

	for _, amount := range []string{"0", "-5", "1.234", "abc"} {
		w = s.do(t, http.MethodPost, "/wallet/deposit", map[string]any{"amount": amount}, alice.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q", amount)
	}

	w = s.do(t, http.MethodGet, "/wallet", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	balance := testutil.DecodeData[walletapp.BalanceResponse](t, w)
	assert.Equal(t, alice.ID, balance.UserID)
	assert.Equal(t, "25.5", balance.Balance.String())
}

func TestWalletHandler_DepositIdempotency(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice", 0)

	deposit := func(body map[string]any, key string) walletapp.TransactionResponse {
		t.Helper()
		w := s.doWithHeader(t, http.MethodPost, "/wallet/deposit", body, alice.Token, middleware.IdempotencyKeyHeader, key)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return testutil.DecodeData[walletapp.TransactionResponse](t, w)
	}

	first := deposit(map[string]any{"amount": "10"}, "dep-1")
	again := deposit(map[string]any{"amount": "10"}, "dep-1")
	assert.Equal(t, first.ID, again.ID)

	fromBody := deposit(map[string]any{"amount": "10", "idempotency_key": "dep-2"}, "")
	assert.NotEqual(t, first.ID, fromBody.ID)
	assert.Equal(t, fromBody.ID, deposit(map[string]any{"amount": "10", "idempotency_key": "dep-2"}, "").ID)

	w := s.do(t, http.MethodGet, "/wallet", nil, alice.Token)
	assert.Equal(t, "20", testutil.DecodeData[walletapp.BalanceResponse](t, w).Balance.String())
}

func TestWalletHandler_WithdrawAndHistory(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice", 50)

	w := s.do(t, http.MethodPost, "/wallet/withdraw", map[string]any{"amount": "80"}, alice.Token)
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE")

	w = s.do(t, http.MethodPost, "/wallet/withdraw", map[string]any{"amount": "30"}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "20", testutil.DecodeData[walletapp.TransactionResponse](t, w).BalanceAfter.String())

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/wallet/deposit", map[string]any{"amount": "5"}, alice.Token).Code)

	w = s.do(t, http.MethodGet, "/wallet/transactions", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	history := testutil.DecodeData[[]walletapp.TransactionResponse](t, w)
	require.Len(t, history, 2)
	assert.ElementsMatch(t, []string{"DEPOSIT", "WITHDRAWAL"}, []string{history[0].Type, history[1].Type})

	w = s.do(t, http.MethodGet, "/wallet/transactions?type=WITHDRAWAL", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.DecodeData[[]walletapp.TransactionResponse](t, w), 1)

	w = s.do(t, http.MethodGet, "/wallet/transactions?type=BOGUS", nil, alice.Token)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}
