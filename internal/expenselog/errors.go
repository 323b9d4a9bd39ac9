package expenselog

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// Revert reasons emitted by the expense log contract.
const (
	ReasonEntryExists = "Entry already exists for this date"
	ReasonInvalidDate = "Invalid date: must be greater than zero"
)

// EIP-1193 "user rejected request".
const codeUserRejected = 4001

const (
	msgUserRejected = "Transaction rejected by user"
	msgNetwork      = "Network error - please check your connection"
	msgEntryExists  = "An entry already exists for this date. Please choose a different date."
	msgInvalidDate  = "Invalid date. Please select a valid date."
	msgUnknown      = "Unknown error occurred"
)

const msgUnauthorized = `Decryption failed: You don't have permission to decrypt this handle. This may happen if:
1. The contract was redeployed and the handle is from an old deployment
2. You haven't added entries yet
3. The transaction hasn't fully confirmed yet

Please try:
1. Add entries again to get new handles with proper permissions
2. Wait a few seconds after adding entries before decrypting
3. Refresh the page and try again`

// RevertError carries the decoded revert reason of a failed call or transaction.
type RevertError struct {
	Reason string
	cause  error
}

func (e *RevertError) Error() string { return "execution reverted: " + e.Reason }
func (e *RevertError) Unwrap() error { return e.cause }

// ClassifyTxError marks err with the kind the facade reports for it. Errors
// that already carry a kind are returned unchanged.
func ClassifyTxError(err error) error {
	if err == nil {
		return nil
	}
	if shared.KindOf(err) != shared.KindUnknown {
		return err
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return shared.Mark(err, shared.KindUserRejected)
	}
	if shared.IsTransportFailure(err) {
		return shared.Mark(err, shared.KindNetwork)
	}
	if reason, ok := decodeRevert(err); ok {
		rev := shared.Mark(&RevertError{Reason: reason, cause: err}, shared.KindReverted)
		switch reason {
		case ReasonEntryExists:
			return shared.Mark(rev, shared.KindEntryExists)
		case ReasonInvalidDate:
			return shared.Mark(rev, shared.KindInvalidDate)
		}
		return rev
	}
	return err
}

// decodeRevert extracts a revert reason from JSON-RPC error data, falling back
// to the node's "execution reverted: ..." message.
func decodeRevert(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if raw, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(raw); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason, true
				}
			}
		}
	}

	const marker = "execution reverted: "
	msg := err.Error()
	if i := strings.Index(msg, marker); i >= 0 {
		return strings.TrimSpace(msg[i+len(marker):]), true
	}
	return "", false
}

// UserMessage renders err as the text shown after "Error: ".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch shared.KindOf(err) {
	case shared.KindUserRejected:
		return msgUserRejected
	case shared.KindNetwork:
		return msgNetwork
	case shared.KindEntryExists:
		return msgEntryExists
	case shared.KindInvalidDate:
		return msgInvalidDate
	case shared.KindReverted:
		var rev *RevertError
		if errors.As(err, &rev) && rev.Reason != "" {
			return rev.Reason
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnknown
}

// DecryptMessage renders a decryption failure.
func DecryptMessage(err error) string {
	if shared.KindOf(err) == shared.KindUnauthorized {
		return msgUnauthorized
	}
	return "Error decrypting: " + err.Error()
}
