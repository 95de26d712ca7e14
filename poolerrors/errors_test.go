package poolerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	poolID := common.HexToHash("0x01")

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap("exit.query", "SingleAsset", poolID, nil))
	})

	t.Run("keeps sentinel and context", func(t *testing.T) {
		err := Wrap("exit.query", "SingleAsset", poolID, fmt.Errorf("%w: bpt in exceeds supply", ErrInsufficientLiquidity))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)

		var opErr *OperationError
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, "SingleAsset", opErr.Kind)
		assert.Contains(t, err.Error(), "exit.query SingleAsset pool "+poolID.Hex())
		assert.Contains(t, err.Error(), "bpt in exceeds supply")
	})
}

func TestRelabel(t *testing.T) {
	poolID := common.HexToHash("0x02")
	inner := Wrap("remove_liquidity", "proportional", poolID, ErrUnsupportedPair)

	testCases := []struct {
		name string
		err  error
	}{
		{name: "replaces an operation error", err: inner},
		{name: "wraps a plain error", err: ErrUnsupportedPair},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Relabel("exit", "single_asset", poolID, tc.err)
			assert.ErrorIs(t, err, ErrUnsupportedPair)
			assert.Equal(t, "exit single_asset pool "+poolID.Hex()+": unsupported token pair", err.Error())

			var opErr *OperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, "exit", opErr.Op)
			assert.NotErrorIs(t, opErr.Err, inner)
		})
	}

	assert.NoError(t, Relabel("exit", "", poolID, nil))
}

func TestReason(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{nil, "success"},
		{fmt.Errorf("%w: x", ErrInvalidInput), "invalid_input"},
		{ErrUnsupportedOperation, "unsupported_operation"},
		{ErrUnsupportedPair, "unsupported_pair"},
		{ErrInsufficientLiquidity, "insufficient_liquidity"},
		{ErrDegenerateInput, "degenerate_input"},
		{Wrap("op", "", common.Hash{}, ErrMathOverflow), "math_overflow"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, Reason(tc.err))
		})
	}
}
