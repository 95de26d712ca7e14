package pools

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/defistate/balancer-sdk-go/calculator/fixedpoint"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// BptDecimals is the precision of every pool token.
const BptDecimals = 18

var (
	ErrInvalidRawPool = fmt.Errorf("%w: invalid raw pool", poolerrors.ErrInvalidInput)
	ErrTokenNotInPool = fmt.Errorf("%w: token not in pool", poolerrors.ErrUnsupportedPair)
	ErrSameToken      = fmt.Errorf("%w: tokenIn equals tokenOut", poolerrors.ErrInvalidInput)
	ErrBadIndex       = fmt.Errorf("%w: token index out of range", poolerrors.ErrInvalidInput)
	ErrBadAmounts     = fmt.Errorf("%w: amounts do not match pool tokens", poolerrors.ErrInvalidInput)
	ErrExceedsSupply  = fmt.Errorf("%w: bpt amount exceeds total shares", poolerrors.ErrInsufficientLiquidity)
	ErrEmptyPool      = fmt.Errorf("%w: pool has no shares", poolerrors.ErrDegenerateInput)
	ErrNotInitialized = fmt.Errorf("%w, seed it with an init join", ErrEmptyPool)
)

// ParseFixed parses a non-negative human decimal string into an integer with
// the given number of decimals, truncating extra digits.
func ParseFixed(field, s string, decimals uint8) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidRawPool, field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidRawPool, field, s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidRawPool, field)
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// ParseFixedOr is ParseFixed with a default for empty strings.
func ParseFixedOr(field, s string, decimals uint8, def *big.Int) (*big.Int, error) {
	if s == "" {
		return new(big.Int).Set(def), nil
	}
	return ParseFixed(field, s, decimals)
}

// Option configures how NewBase reads a raw pool.
type Option interface {
	apply(*baseOptions)
}

type baseOptions struct {
	rateScaled   map[int]bool
	allRated     bool
	needsWeights bool
}

type funcOption func(*baseOptions)

func (f funcOption) apply(o *baseOptions) {
	f(o)
}

func newOption(f func(*baseOptions)) Option {
	return funcOption(f)
}

// WithPriceRates folds every token's price rate into its scaling factor.
func WithPriceRates() Option {
	return newOption(func(o *baseOptions) {
		o.allRated = true
	})
}

// WithPriceRateAt folds the price rate of the tokens at the given positions
// into their scaling factors.
func WithPriceRateAt(positions ...int) Option {
	return newOption(func(o *baseOptions) {
		for _, p := range positions {
			o.rateScaled[p] = true
		}
	})
}

// WithWeights requires every token to carry a weight.
func WithWeights() Option {
	return newOption(func(o *baseOptions) {
		o.needsWeights = true
	})
}

// Base is the state shared by every variant. It is immutable after NewBase.
type Base struct {
	chainID        uint64
	id             common.Hash
	address        common.Address
	poolType       Type
	tokens         []PoolToken
	scalingFactors []*big.Int
	swapFee        *big.Int
	totalShares    *big.Int
}

// NewBase validates and normalises the fields common to all variants.
func NewBase(chainID uint64, raw RawPool, t Type, opts ...Option) (Base, error) {
	o := &baseOptions{rateScaled: make(map[int]bool)}
	for _, opt := range opts {
		opt.apply(o)
	}

	if len(raw.Tokens) < 2 {
		return Base{}, fmt.Errorf("%w: pool %s has %d tokens", ErrInvalidRawPool, raw.ID.Hex(), len(raw.Tokens))
	}

	rawTokens := make([]RawPoolToken, len(raw.Tokens))
	copy(rawTokens, raw.Tokens)
	sort.SliceStable(rawTokens, func(i, j int) bool { return rawTokens[i].Index < rawTokens[j].Index })

	seen := make(map[common.Address]struct{}, len(rawTokens))
	tokens := make([]PoolToken, len(rawTokens))
	scalingFactors := make([]*big.Int, len(rawTokens))
	for i, rt := range rawTokens {
		if rt.Index != i {
			return Base{}, fmt.Errorf("%w: token indices are not 0..%d", ErrInvalidRawPool, len(rawTokens)-1)
		}
		if _, dup := seen[rt.Address]; dup {
			return Base{}, fmt.Errorf("%w: duplicate token %s", ErrInvalidRawPool, rt.Address.Hex())
		}
		seen[rt.Address] = struct{}{}
		if rt.Decimals > 18 {
			return Base{}, fmt.Errorf("%w: token %s has %d decimals", ErrInvalidRawPool, rt.Address.Hex(), rt.Decimals)
		}

		balance, err := ParseFixed("balance", rt.Balance, rt.Decimals)
		if err != nil {
			return Base{}, err
		}
		rate, err := ParseFixedOr("priceRate", rt.PriceRate, 18, fixedpoint.One)
		if err != nil {
			return Base{}, err
		}
		if rate.Sign() == 0 {
			return Base{}, fmt.Errorf("%w: token %s has a zero price rate", ErrInvalidRawPool, rt.Address.Hex())
		}
		var weight *big.Int
		if o.needsWeights {
			if weight, err = ParseFixed("weight", rt.Weight, 18); err != nil {
				return Base{}, err
			}
			if weight.Sign() == 0 {
				return Base{}, fmt.Errorf("%w: token %s has a zero weight", ErrInvalidRawPool, rt.Address.Hex())
			}
		}

		tokens[i] = PoolToken{
			Token: token.Token{
				ChainID:  chainID,
				Address:  rt.Address,
				Decimals: rt.Decimals,
				Symbol:   rt.Symbol,
			},
			Index:     i,
			Balance:   balance,
			Weight:    weight,
			PriceRate: rate,
		}

		sf := new(big.Int).Set(token.GetScaledDecimal(18 - rt.Decimals))
		if o.allRated || o.rateScaled[i] {
			scalingFactors[i] = sf.Mul(sf, rate)
		} else {
			scalingFactors[i] = sf.Mul(sf, fixedpoint.One)
		}
	}

	swapFee, err := ParseFixed("swapFee", raw.SwapFee, 18)
	if err != nil {
		return Base{}, err
	}
	if swapFee.Cmp(fixedpoint.One) >= 0 {
		return Base{}, fmt.Errorf("%w: swap fee %s is not below 100%%", ErrInvalidRawPool, raw.SwapFee)
	}
	totalShares, err := ParseFixed("totalShares", raw.TotalShares, BptDecimals)
	if err != nil {
		return Base{}, err
	}

	return Base{
		chainID:        chainID,
		id:             raw.ID,
		address:        raw.Address,
		poolType:       t,
		tokens:         tokens,
		scalingFactors: scalingFactors,
		swapFee:        swapFee,
		totalShares:    totalShares,
	}, nil
}

func (b Base) ID() common.Hash { return b.id }
func (b Base) Address() common.Address { return b.address }
func (b Base) Type() Type { return b.poolType }
func (b Base) ChainID() uint64 { return b.chainID }
func (b Base) Size() int { return len(b.tokens) }
func (b Base) SwapFee() *big.Int { return new(big.Int).Set(b.swapFee) }
func (b Base) TotalShares() *big.Int { return new(big.Int).Set(b.totalShares) }
func (b Base) ScalingFactors() []*big.Int { return CloneAll(b.scalingFactors) }

// Tokens returns a deep copy of the pool tokens in pool order.
func (b Base) Tokens() []PoolToken {
	out := make([]PoolToken, len(b.tokens))
	for i, t := range b.tokens {
		out[i] = t.clone()
	}
	return out
}

// Balances returns the raw balances in pool order.
func (b Base) Balances() []*big.Int {
	out := make([]*big.Int, len(b.tokens))
	for i, t := range b.tokens {
		out[i] = new(big.Int).Set(t.Balance)
	}
	return out
}

// BptToken describes the pool token itself.
func (b Base) BptToken() token.Token {
	return token.Token{ChainID: b.chainID, Address: b.address, Decimals: BptDecimals}
}

// TokenIndex returns the position of addr in the pool.
func (b Base) TokenIndex(addr common.Address) (int, error) {
	for i, t := range b.tokens {
		if t.Address == addr {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrTokenNotInPool, addr.Hex())
}

// Pair resolves the positions of a distinct token pair.
func (b Base) Pair(tokenIn, tokenOut common.Address) (int, int, error) {
	if tokenIn == tokenOut {
		return 0, 0, ErrSameToken
	}
	in, err := b.TokenIndex(tokenIn)
	if err != nil {
		return 0, 0, err
	}
	out, err := b.TokenIndex(tokenOut)
	if err != nil {
		return 0, 0, err
	}
	return in, out, nil
}

// CheckIndex validates a token position.
func (b Base) CheckIndex(i int) error {
	if i < 0 || i >= len(b.tokens) {
		return fmt.Errorf("%w: %d", ErrBadIndex, i)
	}
	return nil
}

// CheckAmount rejects nil or negative amounts.
func CheckAmount(x *big.Int) error {
	if x == nil || x.Sign() < 0 {
		return fmt.Errorf("%w: amount must be non-nil and non-negative", poolerrors.ErrInvalidInput)
	}
	return nil
}

// CheckAmounts validates one non-negative amount per pool token.
func (b Base) CheckAmounts(amounts []*big.Int) error {
	if len(amounts) != len(b.tokens) {
		return fmt.Errorf("%w: got %d, want %d", ErrBadAmounts, len(amounts), len(b.tokens))
	}
	for _, a := range amounts {
		if err := CheckAmount(a); err != nil {
			return err
		}
	}
	return nil
}

// AllZero reports whether every amount is zero.
func AllZero(amounts []*big.Int) bool {
	for _, a := range amounts {
		if a.Sign() != 0 {
			return false
		}
	}
	return true
}

// Zeros returns n zero amounts.
func Zeros(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
	}
	return out
}

// Unsupported reports that this variant lacks op.
func (b Base) Unsupported(op string) error {
	return fmt.Errorf("%w: %s pools do not support %s", poolerrors.ErrUnsupportedOperation, b.poolType, op)
}

// Upscale converts a raw amount of token i to 18-decimal full precision, rounding down.
func (b Base) Upscale(m *fixedpoint.Math, amount *big.Int, i int) *big.Int {
	return m.MulDown(amount, b.scalingFactors[i])
}

// UpscaleAll upscales one amount per pool token.
func (b Base) UpscaleAll(m *fixedpoint.Math, amounts []*big.Int) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i, a := range amounts {
		out[i] = b.Upscale(m, a, i)
	}
	return out
}

// UpscaledBalances returns the pool balances in full precision.
func (b Base) UpscaledBalances(m *fixedpoint.Math) []*big.Int {
	out := make([]*big.Int, len(b.tokens))
	for i, t := range b.tokens {
		out[i] = b.Upscale(m, t.Balance, i)
	}
	return out
}

// DownscaleDown converts a full precision amount back to raw units of token i, rounding down.
func (b Base) DownscaleDown(m *fixedpoint.Math, amount *big.Int, i int) *big.Int {
	return m.DivDown(amount, b.scalingFactors[i])
}

// DownscaleUp converts a full precision amount back to raw units of token i, rounding up.
func (b Base) DownscaleUp(m *fixedpoint.Math, amount *big.Int, i int) *big.Int {
	return m.DivUp(amount, b.scalingFactors[i])
}

// ProportionalAmountsIn returns the raw amounts required to mint bptOut
// proportionally to the current balances, rounded up.
func (b Base) ProportionalAmountsIn(bptOut *big.Int) ([]*big.Int, error) {
	if err := CheckAmount(bptOut); err != nil {
		return nil, err
	}
	if bptOut.Sign() == 0 {
		return Zeros(len(b.tokens)), nil
	}
	if b.totalShares.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	var m fixedpoint.Math
	out := make([]*big.Int, len(b.tokens))
	for i, t := range b.tokens {
		out[i] = m.MulDivUp(t.Balance, bptOut, b.totalShares)
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ProportionalAmountsOut returns the raw amounts released by burning bptIn
// proportionally to the current balances, rounded down.
func (b Base) ProportionalAmountsOut(bptIn *big.Int) ([]*big.Int, error) {
	if err := CheckAmount(bptIn); err != nil {
		return nil, err
	}
	if bptIn.Sign() == 0 {
		return Zeros(len(b.tokens)), nil
	}
	if b.totalShares.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	if bptIn.Cmp(b.totalShares) > 0 {
		return nil, ErrExceedsSupply
	}
	var m fixedpoint.Math
	out := make([]*big.Int, len(b.tokens))
	for i, t := range b.tokens {
		out[i] = m.MulDivDown(t.Balance, bptIn, b.totalShares)
	}
	if err := m.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rate returns the price rate folded into the scaling factor of token i.
func (b Base) rate(i int) *big.Int {
	return new(big.Int).Quo(b.scalingFactors[i], token.GetScaledDecimal(18-b.tokens[i].Decimals))
}

// HumanPrice converts a price computed over upscaled balances into whole
// tokenIn per whole tokenOut, removing any rate scaling.
func (b Base) HumanPrice(m *fixedpoint.Math, scaledPrice *big.Int, in, out int) *big.Int {
	return m.MulDivDown(scaledPrice, b.rate(out), b.rate(in))
}
