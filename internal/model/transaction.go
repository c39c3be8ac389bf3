package model

// TxKind identifies one mutating operation family. Each kind owns an
// independent lifecycle; different kinds may be in flight concurrently.
type TxKind string

const (
	TxMint            TxKind = "mint"
	TxApprove         TxKind = "approve"
	TxSwap            TxKind = "swap"
	TxAddLiquidity    TxKind = "addLiquidity"
	TxRemoveLiquidity TxKind = "removeLiquidity"
)

// TxKinds lists every operation family in display order.
func TxKinds() []TxKind {
	return []TxKind{TxMint, TxApprove, TxSwap, TxAddLiquidity, TxRemoveLiquidity}
}

// TransactionState is the externally visible lifecycle snapshot for one kind.
// Hash is set once the ledger accepts the submission; Error is retained
// transiently after a failure for display.
type TransactionState struct {
	IsLoading bool   `json:"is_loading"`
	Hash      string `json:"hash,omitempty"`
	Error     string `json:"error,omitempty"`
}
