package slippage

import (
	"math/big"
	"testing"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTo(t *testing.T) {
	testCases := []struct {
		name   string
		pct    string
		amount int64
		dir    Direction
		want   string
	}{
		{name: "one percent down", pct: "1", amount: 1000, dir: Down, want: "990"},
		{name: "one percent up", pct: "1", amount: 1000, dir: Up, want: "1010"},
		{name: "down rounds toward zero", pct: "1", amount: 999, dir: Down, want: "989"},
		{name: "up rounds away from zero", pct: "1", amount: 999, dir: Up, want: "1009"},
		{name: "zero tolerance", pct: "0", amount: 1234, dir: Up, want: "1234"},
		{name: "full tolerance", pct: "100", amount: 1234, dir: Down, want: "0"},
		{name: "zero amount", pct: "5", amount: 0, dir: Up, want: "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := FromPercentage(tc.pct)
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.ApplyTo(big.NewInt(tc.amount), tc.dir).String())
		})
	}
}

func TestConstructors(t *testing.T) {
	pct, err := FromPercentage("0.5")
	require.NoError(t, err)
	bps, err := FromBasisPoints(50)
	require.NoError(t, err)
	frac, err := FromFraction(big.NewInt(5e15))
	require.NoError(t, err)

	assert.Equal(t, "5000000000000000", pct.Value().String())
	assert.Equal(t, pct.Value().String(), bps.Value().String())
	assert.Equal(t, pct.Value().String(), frac.Value().String())
	assert.Equal(t, "0.5%", pct.String())

	var zero Slippage
	assert.Equal(t, "7", zero.ApplyTo(big.NewInt(7), Down).String())

	for _, bad := range []string{"-1", "100.01", "abc"} {
		_, err := FromPercentage(bad)
		assert.ErrorIs(t, err, poolerrors.ErrInvalidInput, bad)
	}
	_, err = FromBasisPoints(10001)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Panics(t, func() { MustPercentage("200") })
}

func TestApplyToAll(t *testing.T) {
	s := MustPercentage("1")
	amounts := []*big.Int{big.NewInt(1000), big.NewInt(100)}
	bounded := s.ApplyToAll(amounts, Up)
	assert.Equal(t, "1010", bounded[0].String())
	assert.Equal(t, "101", bounded[1].String())
	assert.Equal(t, "1000", amounts[0].String())
}
