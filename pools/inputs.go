package pools

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrChainMismatch    = fmt.Errorf("%w: chain id does not match the pool", poolerrors.ErrInvalidInput)
	ErrDecimalsMismatch = fmt.Errorf("%w: decimals do not match the pool token", poolerrors.ErrInvalidInput)
	ErrDuplicateAmount  = fmt.Errorf("%w: token given more than once", poolerrors.ErrInvalidInput)
	ErrNotBpt           = fmt.Errorf("%w: amount is not denominated in the pool token", poolerrors.ErrInvalidInput)
	ErrNilPool          = fmt.Errorf("%w: pool is nil", poolerrors.ErrInvalidInput)
)

// CheckChain rejects inputs addressed to another chain than p's.
func CheckChain(p Pool, chainID uint64) error {
	if p == nil {
		return ErrNilPool
	}
	if chainID != p.ChainID() {
		return fmt.Errorf("%w: input %d, pool %d", ErrChainMismatch, chainID, p.ChainID())
	}
	return nil
}

// ResolveAmount validates a single token amount against p and returns the
// token's position.
func ResolveAmount(p Pool, amount token.InputAmount) (int, error) {
	if err := amount.Validate(); err != nil {
		return -1, err
	}
	i, err := p.TokenIndex(amount.Address)
	if err != nil {
		return -1, err
	}
	if want := p.Tokens()[i].Decimals; amount.Decimals != want {
		return -1, fmt.Errorf("%w: %s has %d, got %d", ErrDecimalsMismatch, amount.Address.Hex(), want, amount.Decimals)
	}
	return i, nil
}

// ResolveAmounts maps caller amounts onto pool order. Pool tokens that are
// not named are zero, unless requireAll is set.
func ResolveAmounts(p Pool, amounts []token.InputAmount, requireAll bool) ([]*big.Int, error) {
	n := len(p.Tokens())
	if len(amounts) > n || (requireAll && len(amounts) != n) {
		return nil, fmt.Errorf("%w: got %d amounts for %d tokens", ErrBadAmounts, len(amounts), n)
	}
	out := make([]*big.Int, n)
	for _, a := range amounts {
		i, err := ResolveAmount(p, a)
		if err != nil {
			return nil, err
		}
		if out[i] != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAmount, a.Address.Hex())
		}
		out[i] = new(big.Int).Set(a.RawAmount)
	}
	for i := range out {
		if out[i] == nil {
			out[i] = new(big.Int)
		}
	}
	return out, nil
}

// CheckBpt validates an amount of p's own pool token.
func CheckBpt(p Pool, amount token.InputAmount) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if amount.Address != p.Address() {
		return fmt.Errorf("%w: got %s, pool is %s", ErrNotBpt, amount.Address.Hex(), p.Address().Hex())
	}
	if amount.Decimals != BptDecimals {
		return fmt.Errorf("%w: pool token has %d, got %d", ErrDecimalsMismatch, BptDecimals, amount.Decimals)
	}
	return nil
}

// TokenList returns the identities of p's tokens in pool order.
func TokenList(p Pool) []token.Token {
	tokens := p.Tokens()
	out := make([]token.Token, len(tokens))
	for i, t := range tokens {
		out[i] = t.Token
	}
	return out
}

// BptOf describes p's pool token.
func BptOf(p Pool) token.Token {
	return token.Token{ChainID: p.ChainID(), Address: p.Address(), Decimals: BptDecimals}
}

// TokenAmounts pairs raw amounts, in pool order, with p's tokens.
func TokenAmounts(p Pool, raws []*big.Int) ([]token.Amount, error) {
	tokens := TokenList(p)
	if len(raws) != len(tokens) {
		return nil, fmt.Errorf("%w: got %d amounts for %d tokens", ErrBadAmounts, len(raws), len(tokens))
	}
	out := make([]token.Amount, len(raws))
	for i, raw := range raws {
		a, err := token.NewAmount(tokens[i], raw)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// RawAmounts returns the base-unit values of amounts.
func RawAmounts(amounts []token.Amount) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i, a := range amounts {
		out[i] = a.Raw()
	}
	return out
}

// Addresses returns the addresses of tokens.
func Addresses(tokens []token.Token) []common.Address {
	out := make([]common.Address, len(tokens))
	for i, t := range tokens {
		out[i] = t.Address
	}
	return out
}
