package shared

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorKind is the closed set of failure classes that cross package boundaries.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindAborted
	KindTimeout
	KindNetwork
	KindChainIDUnavailable
	KindSDKUnavailable
	KindSDKShape
	KindUnsupported
	KindUserRejected
	KindReverted
	KindEntryExists
	KindInvalidDate
	KindUnauthorized
	KindNotReady
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrAborted            = errors.New("operation aborted")
	ErrTimeout            = errors.New("operation timed out")
	ErrNetwork            = errors.New("network failure")
	ErrChainIDUnavailable = errors.New("chain id unavailable")
	ErrSDKUnavailable     = errors.New("relayer sdk unavailable")
	ErrSDKShape           = errors.New("relayer sdk has an invalid shape")
	ErrUnsupported        = errors.New("capability not supported")
	ErrUserRejected       = errors.New("transaction rejected by user")
	ErrReverted           = errors.New("transaction reverted")
	ErrEntryExists        = errors.New("entry already exists")
	ErrInvalidDate        = errors.New("invalid date")
	ErrUnauthorized       = errors.New("not authorized")
	ErrNotReady           = errors.New("not ready")
)

// ordered most specific first: EntryExists/InvalidDate are also marked Reverted.
var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{KindValidation, ErrValidation},
	{KindAborted, ErrAborted},
	{KindTimeout, ErrTimeout},
	{KindChainIDUnavailable, ErrChainIDUnavailable},
	{KindNetwork, ErrNetwork},
	{KindSDKShape, ErrSDKShape},
	{KindSDKUnavailable, ErrSDKUnavailable},
	{KindUnsupported, ErrUnsupported},
	{KindUserRejected, ErrUserRejected},
	{KindEntryExists, ErrEntryExists},
	{KindInvalidDate, ErrInvalidDate},
	{KindReverted, ErrReverted},
	{KindUnauthorized, ErrUnauthorized},
	{KindNotReady, ErrNotReady},
}

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAborted:
		return "aborted"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindChainIDUnavailable:
		return "chain-id-unavailable"
	case KindSDKUnavailable:
		return "sdk-unavailable"
	case KindSDKShape:
		return "sdk-shape"
	case KindUnsupported:
		return "unsupported"
	case KindUserRejected:
		return "user-rejected"
	case KindReverted:
		return "reverted"
	case KindEntryExists:
		return "entry-exists"
	case KindInvalidDate:
		return "invalid-date"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotReady:
		return "not-ready"
	default:
		return "unknown"
	}
}

// Mark tags err with the sentinel of kind while keeping its message.
func Mark(err error, kind ErrorKind) error {
	if err == nil {
		return nil
	}
	for _, s := range kindSentinels {
		if s.kind == kind {
			return errors.Mark(err, s.err)
		}
	}
	return err
}

// KindOf classifies err. Context cancellation counts as an abort and a
// context deadline as a timeout unless a more specific mark is present.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	if errors.Is(err, context.Canceled) {
		return KindAborted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Aborted returns an abort-kind error for the named step.
func Aborted(step string) error {
	return Mark(errors.Newf("%s: aborted", step), KindAborted)
}

// ValidationError names the offending input field.
type ValidationError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *ValidationError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("invalid %s: must be greater than %d", e.Field, e.Min-1)
	}
	return fmt.Sprintf("invalid %s: must be between %d and %d (got %d)", e.Field, e.Min, e.Max, e.Value)
}

// Is lets errors.Is(err, ErrValidation) match without an explicit mark.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
