package engine

import "math"

// The protocol floor: deposited collateral must be worth at least 150% of
// the minted synthetic value. Expressed as the 150/100 pair so every
// formula keeps the reference truncation order.
const (
	ratioNum uint64 = 150
	ratioDen uint64 = 100
)

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrMathOverflow
	}
	return a + b, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/a != b {
		return 0, ErrMathOverflow
	}
	return c, nil
}

// saturatingSub floors at zero instead of erroring. Sell and redeem
// decrement positions with it; the credit paths stay checked.
func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// maxMintable returns floor(collateral * 100 / 150), the supply ceiling the
// auto-mint deposit variant tops up to.
func maxMintable(collateral uint64) (uint64, error) {
	mul, err := checkedMul(collateral, ratioDen)
	if err != nil {
		return 0, err
	}
	return mul / ratioNum, nil
}

// buyCost returns amount * price * 150 / 100, the collateral charged for a
// protocol-priced buy.
func buyCost(amount, price uint64) (uint64, error) {
	base, err := checkedMul(amount, price)
	if err != nil {
		return 0, err
	}
	scaled, err := checkedMul(base, ratioNum)
	if err != nil {
		return 0, err
	}
	return scaled / ratioDen, nil
}

// sellProceeds returns (amount * price) / 150 * 100. Truncation happens at
// the /150 step; the distributive form rounds differently and must not be
// substituted.
func sellProceeds(amount, price uint64) (uint64, error) {
	base, err := checkedMul(amount, price)
	if err != nil {
		return 0, err
	}
	return checkedMul(base/ratioNum, ratioDen)
}
