package shared

import (
	"net"
	"net/url"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rpc"
)

// IsTransportFailure reports transport-level failures, as opposed to RPC
// errors returned by a reachable node.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if KindOf(err) == KindNetwork {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr), errors.As(err, &urlErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	}
	return false
}
