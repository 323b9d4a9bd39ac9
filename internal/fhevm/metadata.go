package fhevm

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/private-expense-log/internal/relayer"
)

// RelayerMetadata is what a development node reports via fhevm_relayer_metadata.
type RelayerMetadata struct {
	ACLAddress           string `json:"ACLAddress"`
	InputVerifierAddress string `json:"InputVerifierAddress"`
	KMSVerifierAddress   string `json:"KMSVerifierAddress"`
}

func (m RelayerMetadata) Valid() bool {
	return relayer.IsValidAddress(m.ACLAddress) &&
		relayer.IsValidAddress(m.InputVerifierAddress) &&
		relayer.IsValidAddress(m.KMSVerifierAddress)
}

// FetchRelayerMetadata queries rpcURL for the mock contract addresses.
func (r *Resolver) FetchRelayerMetadata(ctx context.Context, rpcURL string) (RelayerMetadata, error) {
	dial := r.Dial
	if dial == nil {
		dial = dialRPC
	}
	p, closeFn, err := dial(ctx, rpcURL)
	if err != nil {
		return RelayerMetadata{}, errors.Wrapf(err, "dial %s", rpcURL)
	}
	if closeFn != nil {
		defer closeFn()
	}

	var md RelayerMetadata
	if err := p.CallContext(ctx, &md, "fhevm_relayer_metadata"); err != nil {
		return RelayerMetadata{}, errors.Wrap(err, "fhevm_relayer_metadata")
	}
	md.ACLAddress = strings.TrimSpace(md.ACLAddress)
	md.InputVerifierAddress = strings.TrimSpace(md.InputVerifierAddress)
	md.KMSVerifierAddress = strings.TrimSpace(md.KMSVerifierAddress)
	if !md.Valid() {
		return RelayerMetadata{}, errors.Newf("fhevm_relayer_metadata returned invalid addresses: %+v", md)
	}
	return md, nil
}
