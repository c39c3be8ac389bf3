// Package quote mirrors the MiniAMM contract's integer pricing client-side.
// Every function is pure, floors exactly where the contract floors, and
// returns zero values on invalid input instead of erroring: these sit on the
// input-echo path and run on every keystroke.
package quote

import (
	"math/big"

	"miniammClient/internal/model"
)

var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
	bufferNum      = big.NewInt(1001)
	bufferDen      = big.NewInt(1000)
	bpsDenominator = big.NewInt(10000)
)

// SwapOutput computes the constant-product output for amountIn against the
// given reserves with the 0.3% fee applied to the input:
//
//	amountInWithFee = amountIn * 997
//	out = amountInWithFee * reserveOut / (reserveIn * 1000 + amountInWithFee)
//
// Division truncates toward zero, matching the contract. Returns 0 when any
// argument is nil or not strictly positive.
func SwapOutput(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	if !allPositive(amountIn, reserveIn, reserveOut) {
		return new(big.Int)
	}

	amountInWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDenominator)
	denominator.Add(denominator, amountInWithFee)

	return numerator.Quo(numerator, denominator)
}

// PriceImpact returns the relative price move caused by a swap, as a
// percentage. Display only; settlement math never touches floats.
func PriceImpact(amountIn, reserveIn, reserveOut *big.Int) float64 {
	if !allPositive(amountIn, reserveIn, reserveOut) {
		return 0
	}

	out := SwapOutput(amountIn, reserveIn, reserveOut)

	pre := bigToFloat(reserveOut) / bigToFloat(reserveIn)
	post := (bigToFloat(reserveOut) - bigToFloat(out)) /
		(bigToFloat(reserveIn) + bigToFloat(amountIn))

	if pre == 0 {
		return 0
	}
	return (pre - post) / pre * 100
}

// LPTokensForDeposit computes the LP tokens minted for a deposit. The first
// deposit mints min(amount0, amount1), matching the contract's bootstrap rule
// rather than the usual sqrt(amount0*amount1). Later deposits mint the smaller
// of the two proportional claims so the mint tracks the scarcer side.
func LPTokensForDeposit(amount0, amount1 *big.Int, pool model.PoolState) *big.Int {
	if !allPositive(amount0, amount1) {
		return new(big.Int)
	}

	if pool.TotalSupply == nil || pool.TotalSupply.Sign() == 0 {
		return new(big.Int).Set(minInt(amount0, amount1))
	}
	if !allPositive(pool.Reserve0, pool.Reserve1) {
		return new(big.Int)
	}

	fromToken0 := new(big.Int).Mul(amount0, pool.TotalSupply)
	fromToken0.Quo(fromToken0, pool.Reserve0)
	fromToken1 := new(big.Int).Mul(amount1, pool.TotalSupply)
	fromToken1.Quo(fromToken1, pool.Reserve1)

	return minInt(fromToken0, fromToken1)
}

// WithdrawAmounts computes the proportional token amounts released when
// burning lpAmount. Both shares floor, so a round trip never pays out more
// than was deposited. Returns (0, 0) when the pool has no supply.
func WithdrawAmounts(lpAmount *big.Int, pool model.PoolState) (*big.Int, *big.Int) {
	if !allPositive(lpAmount, pool.TotalSupply) {
		return new(big.Int), new(big.Int)
	}

	amount0 := new(big.Int).Mul(lpAmount, zeroIfNil(pool.Reserve0))
	amount0.Quo(amount0, pool.TotalSupply)
	amount1 := new(big.Int).Mul(lpAmount, zeroIfNil(pool.Reserve1))
	amount1.Quo(amount1, pool.TotalSupply)

	return amount0, amount1
}

// RequiredCounterpartAmount returns the amount of the other token that keeps
// the pool ratio when changedAmount of one side is deposited. Callers that
// submit the result should pass it through WithSlippageBuffer first.
func RequiredCounterpartAmount(changedAmount, changedReserve, otherReserve *big.Int) *big.Int {
	if !allPositive(changedAmount, changedReserve, otherReserve) {
		return new(big.Int)
	}

	required := new(big.Int).Mul(changedAmount, otherReserve)
	return required.Quo(required, changedReserve)
}

// WithSlippageBuffer applies the fixed 0.1% upward margin (1001/1000) used to
// absorb ratio drift between quote and submission.
func WithSlippageBuffer(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return new(big.Int)
	}
	buffered := new(big.Int).Mul(amount, bufferNum)
	return buffered.Quo(buffered, bufferDen)
}

// MinimumAfterSlippage floors amount by the given tolerance in basis points.
func MinimumAfterSlippage(amount *big.Int, slippageBps int64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || slippageBps < 0 || slippageBps > 10000 {
		return new(big.Int)
	}
	kept := new(big.Int).Sub(bpsDenominator, big.NewInt(slippageBps))
	out := new(big.Int).Mul(amount, kept)
	return out.Quo(out, bpsDenominator)
}

// PoolRatio returns the price of token0 in terms of token1, for display.
func PoolRatio(pool model.PoolState) float64 {
	if !allPositive(pool.Reserve0, pool.Reserve1) {
		return 0
	}
	return bigToFloat(pool.Reserve1) / bigToFloat(pool.Reserve0)
}

// PoolShare returns the percentage of the pool a holder's LP balance claims.
func PoolShare(lpBalance *big.Int, pool model.PoolState) float64 {
	if !allPositive(pool.TotalSupply) || lpBalance == nil || lpBalance.Sign() < 0 {
		return 0
	}
	return bigToFloat(lpBalance) * 100 / bigToFloat(pool.TotalSupply)
}

func allPositive(values ...*big.Int) bool {
	for _, v := range values {
		if v == nil || v.Sign() <= 0 {
			return false
		}
	}
	return true
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func bigToFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
