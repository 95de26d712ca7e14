// Package fixedpoint implements 18-decimal fixed point arithmetic bounded to
// unsigned 256-bit integers, with explicit rounding direction on every
// lossy operation.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/calculator/logexpmath"
	"github.com/defistate/balancer-sdk-go/poolerrors"
	"github.com/holiman/uint256"
)

var (
	// One is 1.0 in 18-decimal fixed point. It MUST NOT be modified.
	One = big.NewInt(1e18)
	// Two is 2.0 in 18-decimal fixed point. It MUST NOT be modified.
	Two = big.NewInt(2e18)
	// Four is 4.0 in 18-decimal fixed point. It MUST NOT be modified.
	Four = big.NewInt(4e18)

	// maxPowRelativeError bounds the relative error of logexpmath.Pow (1e-14).
	maxPowRelativeError = big.NewInt(10000)

	oneU = uint256.NewInt(1e18)

	ErrOverflow     = fmt.Errorf("%w: result exceeds uint256", poolerrors.ErrMathOverflow)
	ErrUnderflow    = fmt.Errorf("%w: subtraction underflow", poolerrors.ErrMathOverflow)
	ErrOutOfRange   = fmt.Errorf("%w: operand outside uint256 range", poolerrors.ErrMathOverflow)
	ErrZeroDivision = fmt.Errorf("%w: division by zero", poolerrors.ErrDegenerateInput)
)

// Math performs checked arithmetic and keeps the first error it hits.
// Once an error is recorded every further operation returns zero, so a whole
// formula can be written straight through and checked once with Err.
// The zero value is ready to use; a Math must not be shared between goroutines.
type Math struct {
	err error
}

// Err returns the first error recorded.
func (m *Math) Err() error {
	return m.err
}

// Fail records err unless an earlier error is already held.
func (m *Math) Fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Math) fail(err error) *big.Int {
	m.Fail(err)
	return new(big.Int)
}

func (m *Math) load(x *big.Int) *uint256.Int {
	if x == nil || x.Sign() < 0 {
		m.Fail(ErrOutOfRange)
		return nil
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		m.Fail(ErrOutOfRange)
		return nil
	}
	return v
}

func (m *Math) load2(a, b *big.Int) (*uint256.Int, *uint256.Int, bool) {
	if m.err != nil {
		return nil, nil, false
	}
	x := m.load(a)
	y := m.load(b)
	return x, y, m.err == nil
}

// Add returns a + b.
func (m *Math) Add(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return m.fail(ErrOverflow)
	}
	return z.ToBig()
}

// Sub returns a - b and fails on underflow.
func (m *Math) Sub(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	if x.Lt(y) {
		return m.fail(ErrUnderflow)
	}
	return new(uint256.Int).Sub(x, y).ToBig()
}

// Mul returns the plain integer product a * b.
func (m *Math) Mul(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return m.fail(ErrOverflow)
	}
	return z.ToBig()
}

// DivFloor returns the plain integer quotient a / b rounded down.
func (m *Math) DivFloor(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	if y.IsZero() {
		return m.fail(ErrZeroDivision)
	}
	return new(uint256.Int).Div(x, y).ToBig()
}

// DivCeil returns the plain integer quotient a / b rounded up.
func (m *Math) DivCeil(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	if y.IsZero() {
		return m.fail(ErrZeroDivision)
	}
	if x.IsZero() {
		return new(big.Int)
	}
	z := new(uint256.Int).SubUint64(x, 1)
	z.Div(z, y)
	return z.AddUint64(z, 1).ToBig()
}

// MulDown returns a * b / 1e18 rounded down.
func (m *Math) MulDown(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return m.fail(ErrOverflow)
	}
	return z.Div(z, oneU).ToBig()
}

// MulUp returns a * b / 1e18 rounded up.
func (m *Math) MulUp(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return m.fail(ErrOverflow)
	}
	if z.IsZero() {
		return new(big.Int)
	}
	z.SubUint64(z, 1)
	z.Div(z, oneU)
	return z.AddUint64(z, 1).ToBig()
}

// DivDown returns a * 1e18 / b rounded down.
func (m *Math) DivDown(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	if y.IsZero() {
		return m.fail(ErrZeroDivision)
	}
	if x.IsZero() {
		return new(big.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(x, oneU)
	if overflow {
		return m.fail(ErrOverflow)
	}
	return z.Div(z, y).ToBig()
}

// DivUp returns a * 1e18 / b rounded up.
func (m *Math) DivUp(a, b *big.Int) *big.Int {
	x, y, ok := m.load2(a, b)
	if !ok {
		return new(big.Int)
	}
	if y.IsZero() {
		return m.fail(ErrZeroDivision)
	}
	if x.IsZero() {
		return new(big.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(x, oneU)
	if overflow {
		return m.fail(ErrOverflow)
	}
	z.SubUint64(z, 1)
	z.Div(z, y)
	return z.AddUint64(z, 1).ToBig()
}

// PowDown returns x^y rounded down, compensating the logexpmath error bound.
func (m *Math) PowDown(x, y *big.Int) *big.Int {
	if m.err != nil {
		return new(big.Int)
	}
	switch {
	case y.Cmp(One) == 0:
		return new(big.Int).Set(x)
	case y.Cmp(Two) == 0:
		return m.MulDown(x, x)
	case y.Cmp(Four) == 0:
		square := m.MulDown(x, x)
		return m.MulDown(square, square)
	}
	raw, err := logexpmath.Pow(x, y)
	if err != nil {
		return m.fail(err)
	}
	maxError := m.Add(m.MulUp(raw, maxPowRelativeError), big.NewInt(1))
	if raw.Cmp(maxError) < 0 {
		return new(big.Int)
	}
	return m.Sub(raw, maxError)
}

// PowUp returns x^y rounded up, compensating the logexpmath error bound.
func (m *Math) PowUp(x, y *big.Int) *big.Int {
	if m.err != nil {
		return new(big.Int)
	}
	switch {
	case y.Cmp(One) == 0:
		return new(big.Int).Set(x)
	case y.Cmp(Two) == 0:
		return m.MulUp(x, x)
	case y.Cmp(Four) == 0:
		square := m.MulUp(x, x)
		return m.MulUp(square, square)
	}
	raw, err := logexpmath.Pow(x, y)
	if err != nil {
		return m.fail(err)
	}
	maxError := m.Add(m.MulUp(raw, maxPowRelativeError), big.NewInt(1))
	return m.Add(raw, maxError)
}

// Complement returns 1 - x, or zero when x >= 1.
func (m *Math) Complement(x *big.Int) *big.Int {
	if m.err != nil {
		return new(big.Int)
	}
	if x.Cmp(One) >= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(One, x)
}

// Sqrt returns the fixed point square root of x rounded down.
func (m *Math) Sqrt(x *big.Int) *big.Int {
	if m.load(x) == nil || m.err != nil {
		return new(big.Int)
	}
	scaled := new(big.Int).Mul(x, One)
	return scaled.Sqrt(scaled)
}

// MulDivDown returns a * b / c rounded down without an intermediate 256-bit bound.
func (m *Math) MulDivDown(a, b, c *big.Int) *big.Int {
	if m.err != nil {
		return new(big.Int)
	}
	if c.Sign() == 0 {
		return m.fail(ErrZeroDivision)
	}
	z := new(big.Int).Mul(a, b)
	z.Quo(z, c)
	if m.load(z) == nil {
		return new(big.Int)
	}
	return z
}

// MulDivUp returns a * b / c rounded up without an intermediate 256-bit bound.
func (m *Math) MulDivUp(a, b, c *big.Int) *big.Int {
	if m.err != nil {
		return new(big.Int)
	}
	if c.Sign() == 0 {
		return m.fail(ErrZeroDivision)
	}
	z := new(big.Int).Mul(a, b)
	if z.Sign() == 0 {
		return z
	}
	z.Sub(z, big.NewInt(1))
	z.Quo(z, c)
	z.Add(z, big.NewInt(1))
	if m.load(z) == nil {
		return new(big.Int)
	}
	return z
}

// Max returns the larger of a and b.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
