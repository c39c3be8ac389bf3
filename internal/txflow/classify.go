package txflow

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"miniammClient/internal/contract"
)

// ErrorKind is the failure taxonomy the controller reports against.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUserCancelled
	KindInsufficientFunds
	KindGasEstimation
	KindNetwork
	KindReverted
	KindTimeout
	KindNonce
	KindUnknownAccount
)

// Classification pairs a failure kind with its user-facing message.
type Classification struct {
	Kind    ErrorKind
	Message string
}

// walletRejectionCode is the EIP-1193 userRejectedRequest error code.
const walletRejectionCode = 4001

const maxRawMessageLen = 150

// Classify maps a raw submission or confirmation error onto the taxonomy.
// Ordering matters: cancellation and the pre-flight probe are checked before
// the loose message matches.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnknown, Message: "Transaction failed"}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	if isUserRejection(err, lower) {
		return Classification{Kind: KindUserCancelled, Message: "Transaction rejected by user"}
	}

	if errors.Is(err, contract.ErrGasEstimation) || strings.Contains(lower, "cannot estimate gas") {
		return Classification{
			Kind:    KindGasEstimation,
			Message: "Transaction would fail. Please check your inputs and try again.",
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout") {
		return Classification{
			Kind:    KindTimeout,
			Message: "Transaction is taking longer than expected. It may still be processing. Check the block explorer.",
		}
	}

	if strings.Contains(lower, "insufficient funds") || strings.Contains(lower, "insufficient balance") {
		return Classification{Kind: KindInsufficientFunds, Message: "Insufficient funds for transaction"}
	}

	if strings.Contains(lower, "unknown account") {
		return Classification{
			Kind:    KindUnknownAccount,
			Message: "Wallet not properly connected. Please reconnect your wallet.",
		}
	}

	if strings.Contains(lower, "nonce") {
		return Classification{Kind: KindNonce, Message: "Transaction nonce error. Please try again."}
	}

	if reason, ok := revertReason(msg); ok {
		return Classification{Kind: KindReverted, Message: reason}
	}
	if strings.Contains(lower, "reverted") {
		return Classification{Kind: KindReverted, Message: "Transaction failed - reverted"}
	}

	if strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "network error") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "failed to fetch") {
		return Classification{
			Kind:    KindNetwork,
			Message: "Network error. Please check your connection and try again.",
		}
	}

	if len(msg) > maxRawMessageLen {
		msg = msg[:maxRawMessageLen] + "..."
	}
	return Classification{Kind: KindUnknown, Message: msg}
}

// IsUserCancelled reports whether the failure was a deliberate wallet-side
// rejection. Cancellations clear state silently, no notification.
func IsUserCancelled(err error) bool {
	if err == nil {
		return false
	}
	return isUserRejection(err, strings.ToLower(err.Error()))
}

func isUserRejection(err error, lowerMsg string) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == walletRejectionCode {
		return true
	}
	return strings.Contains(lowerMsg, "user rejected") ||
		strings.Contains(lowerMsg, "user denied request signature") ||
		strings.Contains(lowerMsg, "action_rejected") ||
		strings.Contains(lowerMsg, "userrejectedrequesterror")
}

// revertReason pulls the human reason string out of an execution-revert
// error when the node passed one through.
func revertReason(msg string) (string, bool) {
	const marker = "execution reverted: "
	if idx := strings.Index(msg, marker); idx >= 0 {
		reason := strings.TrimSpace(msg[idx+len(marker):])
		if reason != "" {
			return reason, true
		}
	}
	const solMarker = "reverted with reason string '"
	if idx := strings.Index(msg, solMarker); idx >= 0 {
		rest := msg[idx+len(solMarker):]
		if end := strings.Index(rest, "'"); end > 0 {
			return rest[:end], true
		}
	}
	return "", false
}
