package model

import "math/big"

// PoolState holds the last-known AMM reserves and LP token supply, in base units.
// An uninitialized pool has all three fields at zero.
type PoolState struct {
	Reserve0    *big.Int
	Reserve1    *big.Int
	TotalSupply *big.Int
}

// NewPoolState returns a zeroed pool state.
func NewPoolState() PoolState {
	return PoolState{
		Reserve0:    new(big.Int),
		Reserve1:    new(big.Int),
		TotalSupply: new(big.Int),
	}
}

// Clone returns a deep copy so cached state can be handed out without aliasing.
func (p PoolState) Clone() PoolState {
	return PoolState{
		Reserve0:    cloneInt(p.Reserve0),
		Reserve1:    cloneInt(p.Reserve1),
		TotalSupply: cloneInt(p.TotalSupply),
	}
}

// Initialized reports whether the pool has received its first liquidity.
func (p PoolState) Initialized() bool {
	return p.TotalSupply != nil && p.TotalSupply.Sign() > 0
}

// TokenBalances holds the connected account's wallet balances in base units.
type TokenBalances struct {
	Token0  *big.Int
	Token1  *big.Int
	LPToken *big.Int
}

func NewTokenBalances() TokenBalances {
	return TokenBalances{
		Token0:  new(big.Int),
		Token1:  new(big.Int),
		LPToken: new(big.Int),
	}
}

func (b TokenBalances) Clone() TokenBalances {
	return TokenBalances{
		Token0:  cloneInt(b.Token0),
		Token1:  cloneInt(b.Token1),
		LPToken: cloneInt(b.LPToken),
	}
}

// Allowances holds the account's spend approvals granted to the AMM contract.
type Allowances struct {
	Token0 *big.Int
	Token1 *big.Int
}

func NewAllowances() Allowances {
	return Allowances{
		Token0: new(big.Int),
		Token1: new(big.Int),
	}
}

func (a Allowances) Clone() Allowances {
	return Allowances{
		Token0: cloneInt(a.Token0),
		Token1: cloneInt(a.Token1),
	}
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
