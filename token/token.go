// Package token holds the token identity and amount value types shared by the
// pools, the query engines and the call builders.
package token

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	ten = big.NewInt(10)

	// precomputed 10^dec for typical ERC20 decimals (0..18)
	precomputedScales [19]*big.Int

	ErrTokenMismatch  = fmt.Errorf("%w: amounts belong to different tokens", poolerrors.ErrInvalidInput)
	ErrNegativeAmount = fmt.Errorf("%w: amount must be non-nil and non-negative", poolerrors.ErrInvalidInput)
	ErrBadDecimals    = fmt.Errorf("%w: token decimals above 36", poolerrors.ErrInvalidInput)
)

func init() {
	precomputedScales[0] = big.NewInt(1)
	for i := 1; i < len(precomputedScales); i++ {
		precomputedScales[i] = new(big.Int).Mul(precomputedScales[i-1], ten)
	}
}

// GetScaledDecimal returns 10^dec. It returns a *big.Int that MUST NOT be modified.
func GetScaledDecimal(dec uint8) *big.Int {
	if int(dec) < len(precomputedScales) {
		return precomputedScales[dec]
	}
	return new(big.Int).Exp(ten, big.NewInt(int64(dec)), nil)
}

// Token identifies an ERC20 token on a chain.
type Token struct {
	ChainID  uint64         `json:"chainId"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
}

// IsSame reports whether t and o are the same token on the same chain.
func (t Token) IsSame(o Token) bool {
	return t.ChainID == o.ChainID && t.Address == o.Address
}

// Amount is an immutable raw base-unit quantity of a token.
type Amount struct {
	token Token
	raw   *big.Int
}

// NewAmount pairs a token with a raw amount. The raw value is copied.
func NewAmount(t Token, raw *big.Int) (Amount, error) {
	if raw == nil || raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{token: t, raw: new(big.Int).Set(raw)}, nil
}

// Zero returns an amount of zero units of t.
func Zero(t Token) Amount {
	return Amount{token: t, raw: new(big.Int)}
}

// FromHuman parses a human decimal string such as "1.5" into base units,
// truncating digits beyond the token's decimals.
func FromHuman(t Token, human string) (Amount, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q is not a decimal: %v", poolerrors.ErrInvalidInput, human, err)
	}
	raw := d.Shift(int32(t.Decimals)).Truncate(0).BigInt()
	return NewAmount(t, raw)
}

// Token returns the token this amount is denominated in.
func (a Amount) Token() Token {
	return a.token
}

// Raw returns a copy of the base-unit amount.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// Scale18 returns the amount normalised to 18 decimals, truncating when the
// token has more than 18 decimals.
func (a Amount) Scale18() *big.Int {
	raw := a.Raw()
	if a.token.Decimals <= 18 {
		return raw.Mul(raw, GetScaledDecimal(18-a.token.Decimals))
	}
	return raw.Quo(raw, GetScaledDecimal(a.token.Decimals-18))
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Cmp compares two amounts of the same token.
func (a Amount) Cmp(b Amount) (int, error) {
	if !a.token.IsSame(b.token) {
		return 0, ErrTokenMismatch
	}
	return a.Raw().Cmp(b.Raw()), nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	if !a.token.IsSame(b.token) {
		return Amount{}, ErrTokenMismatch
	}
	return Amount{token: a.token, raw: new(big.Int).Add(a.Raw(), b.Raw())}, nil
}

// Sub returns a - b and fails when the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if !a.token.IsSame(b.token) {
		return Amount{}, ErrTokenMismatch
	}
	return NewAmount(a.token, new(big.Int).Sub(a.Raw(), b.Raw()))
}

// MulDownFixed multiplies by an 18-decimal fixed point factor, rounding down.
func (a Amount) MulDownFixed(factor *big.Int) (Amount, error) {
	if factor == nil || factor.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	raw := new(big.Int).Mul(a.Raw(), factor)
	return Amount{token: a.token, raw: raw.Quo(raw, GetScaledDecimal(18))}, nil
}

// MulUpFixed multiplies by an 18-decimal fixed point factor, rounding up.
func (a Amount) MulUpFixed(factor *big.Int) (Amount, error) {
	if factor == nil || factor.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	raw := new(big.Int).Mul(a.Raw(), factor)
	if raw.Sign() == 0 {
		return Amount{token: a.token, raw: raw}, nil
	}
	raw.Sub(raw, big.NewInt(1))
	raw.Quo(raw, GetScaledDecimal(18))
	return Amount{token: a.token, raw: raw.Add(raw, big.NewInt(1))}, nil
}

// Human returns the amount as a decimal in whole token units.
func (a Amount) Human() decimal.Decimal {
	return decimal.NewFromBigInt(a.Raw(), -int32(a.token.Decimals))
}

// String renders the human decimal value followed by the symbol, if any.
func (a Amount) String() string {
	if a.token.Symbol == "" {
		return a.Human().String()
	}
	return a.Human().String() + " " + a.token.Symbol
}

// InputAmount is a caller supplied raw amount of a token, used by the
// operation inputs.
type InputAmount struct {
	Address   common.Address `json:"address"`
	Decimals  uint8          `json:"decimals"`
	RawAmount *big.Int       `json:"rawAmount"`
}

// Validate rejects missing or negative amounts.
func (i InputAmount) Validate() error {
	if i.RawAmount == nil || i.RawAmount.Sign() < 0 {
		return fmt.Errorf("%w: token %s", ErrNegativeAmount, i.Address.Hex())
	}
	if i.Decimals > 36 {
		return ErrBadDecimals
	}
	return nil
}
