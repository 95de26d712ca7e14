package logexpmath

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/poolerrors"
)

// All arithmetic below is signed and truncates toward zero (big.Int Quo/Rem),
// matching the 256-bit signed integer semantics of the on-chain library.

var (
	ErrXOutOfBounds       = fmt.Errorf("%w: pow base out of bounds", poolerrors.ErrMathOverflow)
	ErrYOutOfBounds       = fmt.Errorf("%w: pow exponent out of bounds", poolerrors.ErrMathOverflow)
	ErrProductOutOfBounds = fmt.Errorf("%w: pow product out of bounds", poolerrors.ErrMathOverflow)
	ErrInvalidExponent    = fmt.Errorf("%w: exp argument out of bounds", poolerrors.ErrMathOverflow)
	ErrOutOfBounds        = fmt.Errorf("%w: ln argument must be positive", poolerrors.ErrDegenerateInput)
)

var (
	one18 = mustBig("1000000000000000000")
	one20 = mustBig("100000000000000000000")
	one36 = mustBig("1000000000000000000000000000000000000")

	maxNaturalExponent = mustBig("130000000000000000000")
	minNaturalExponent = mustBig("-41000000000000000000")

	ln36LowerBound = mustBig("900000000000000000")
	ln36UpperBound = mustBig("1100000000000000000")

	// 2^254 / one20
	mildExponentBound = new(big.Int).Quo(new(big.Int).Lsh(big.NewInt(1), 254), one20)
	// 2^255
	int256Bound = new(big.Int).Lsh(big.NewInt(1), 255)

	// 18 decimal constants: x0 = 2^7, x1 = 2^6 and e^x0, e^x1 without decimals.
	x0 = mustBig("128000000000000000000")
	a0 = mustBig("38877084059945950922200000000000000000000000000000000000")
	x1 = mustBig("64000000000000000000")
	a1 = mustBig("6235149080811616882910000000")

	// 20 decimal constants: x_n = 2^(7-n), a_n = e^(x_n).
	xs = []*big.Int{
		mustBig("3200000000000000000000"),
		mustBig("1600000000000000000000"),
		mustBig("800000000000000000000"),
		mustBig("400000000000000000000"),
		mustBig("200000000000000000000"),
		mustBig("100000000000000000000"),
		mustBig("50000000000000000000"),
		mustBig("25000000000000000000"),
		mustBig("12500000000000000000"),
		mustBig("6250000000000000000"),
	}
	as = []*big.Int{
		mustBig("7896296018268069516100000000000000"),
		mustBig("888611052050787263676000000"),
		mustBig("298095798704172827474000"),
		mustBig("5459815003314423907810"),
		mustBig("738905609893065022723"),
		mustBig("271828182845904523536"),
		mustBig("164872127070012814685"),
		mustBig("128402541668774148407"),
		mustBig("113314845306682631683"),
		mustBig("106449445891785942956"),
	}
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("logexpmath: bad constant " + s)
	}
	return n
}

// Pow returns x^y where both are 18-decimal fixed point values.
// Results carry a relative error of up to 1e-14 which callers must absorb
// with directional rounding.
func Pow(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return new(big.Int).Set(one18), nil
	}
	if x.Sign() == 0 {
		return new(big.Int), nil
	}
	if x.Sign() < 0 || x.Cmp(int256Bound) >= 0 {
		return nil, ErrXOutOfBounds
	}
	if y.Sign() < 0 || y.Cmp(mildExponentBound) >= 0 {
		return nil, ErrYOutOfBounds
	}

	logxTimesY := new(big.Int)
	if ln36LowerBound.Cmp(x) < 0 && x.Cmp(ln36UpperBound) < 0 {
		ln36X := ln36(x)
		// split to keep full precision: (ln / 1e18) * y + ((ln % 1e18) * y) / 1e18
		q, r := new(big.Int).QuoRem(ln36X, one18, new(big.Int))
		logxTimesY.Mul(q, y)
		r.Mul(r, y)
		r.Quo(r, one18)
		logxTimesY.Add(logxTimesY, r)
	} else {
		lnX, err := ln(x)
		if err != nil {
			return nil, err
		}
		logxTimesY.Mul(lnX, y)
	}
	logxTimesY.Quo(logxTimesY, one18)

	if logxTimesY.Cmp(minNaturalExponent) < 0 || logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrProductOutOfBounds
	}
	return Exp(logxTimesY)
}

// Exp returns e^x for an 18-decimal fixed point x in [-41, 130].
func Exp(x *big.Int) (*big.Int, error) {
	if x.Cmp(minNaturalExponent) < 0 || x.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrInvalidExponent
	}
	if x.Sign() < 0 {
		inv, err := Exp(new(big.Int).Neg(x))
		if err != nil {
			return nil, err
		}
		res := new(big.Int).Mul(one18, one18)
		return res.Quo(res, inv), nil
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	switch {
	case x.Cmp(x0) >= 0:
		x.Sub(x, x0)
		firstAN = a0
	case x.Cmp(x1) >= 0:
		x.Sub(x, x1)
		firstAN = a1
	}

	// switch to 20 decimals for the remaining reductions
	x.Mul(x, big.NewInt(100))

	product := new(big.Int).Set(one20)
	// only x2..x9 are used by exp
	for i := 0; i < 8; i++ {
		if x.Cmp(xs[i]) >= 0 {
			x.Sub(x, xs[i])
			product.Mul(product, as[i])
			product.Quo(product, one20)
		}
	}

	// Taylor series for e^x with x < 2^-2, 12 terms is enough for 20 decimals.
	seriesSum := new(big.Int).Set(one20)
	term := new(big.Int).Set(x)
	seriesSum.Add(seriesSum, term)
	for i := int64(2); i <= 12; i++ {
		term.Mul(term, x)
		term.Quo(term, one20)
		term.Quo(term, big.NewInt(i))
		seriesSum.Add(seriesSum, term)
	}

	res := new(big.Int).Mul(product, seriesSum)
	res.Quo(res, one20)
	res.Mul(res, firstAN)
	return res.Quo(res, big.NewInt(100)), nil
}

// Ln returns the natural logarithm of an 18-decimal fixed point a > 0.
func Ln(a *big.Int) (*big.Int, error) {
	if a.Sign() <= 0 {
		return nil, ErrOutOfBounds
	}
	if ln36LowerBound.Cmp(a) < 0 && a.Cmp(ln36UpperBound) < 0 {
		return new(big.Int).Quo(ln36(a), one18), nil
	}
	return ln(a)
}

func ln(a *big.Int) (*big.Int, error) {
	if a.Sign() <= 0 {
		return nil, ErrOutOfBounds
	}
	if a.Cmp(one18) < 0 {
		// ln(a) = -ln(1/a)
		inv := new(big.Int).Mul(one18, one18)
		inv.Quo(inv, a)
		res, err := ln(inv)
		if err != nil {
			return nil, err
		}
		return res.Neg(res), nil
	}

	a = new(big.Int).Set(a)
	sum := new(big.Int)
	if a.Cmp(new(big.Int).Mul(a0, one18)) >= 0 {
		a.Quo(a, a0)
		sum.Add(sum, x0)
	}
	if a.Cmp(new(big.Int).Mul(a1, one18)) >= 0 {
		a.Quo(a, a1)
		sum.Add(sum, x1)
	}

	sum.Mul(sum, big.NewInt(100))
	a.Mul(a, big.NewInt(100))

	for i := range as {
		if a.Cmp(as[i]) >= 0 {
			a.Mul(a, one20)
			a.Quo(a, as[i])
			sum.Add(sum, xs[i])
		}
	}

	// z = (a - 1) / (a + 1), ln(a) = 2 * (z + z^3/3 + z^5/5 + ...)
	z := new(big.Int).Sub(a, one20)
	z.Mul(z, one20)
	z.Quo(z, new(big.Int).Add(a, one20))

	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one20)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for i := int64(3); i <= 11; i += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, one20)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(i)))
	}
	seriesSum.Mul(seriesSum, big.NewInt(2))

	res := sum.Add(sum, seriesSum)
	return res.Quo(res, big.NewInt(100)), nil
}

// ln36 computes ln(x) with 36 decimals for x close to one.
func ln36(x *big.Int) *big.Int {
	x = new(big.Int).Mul(x, one18)

	z := new(big.Int).Sub(x, one36)
	z.Mul(z, one36)
	z.Quo(z, new(big.Int).Add(x, one36))

	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one36)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for i := int64(3); i <= 15; i += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, one36)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(i)))
	}
	return seriesSum.Mul(seriesSum, big.NewInt(2))
}
