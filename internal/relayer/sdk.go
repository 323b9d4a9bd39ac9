// Package relayer holds the process-wide relayer SDK runtime and the loader
// that brings it from "uninitialized" to "initialized".
package relayer

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

type InitOptions struct {
	TFHEParams any
	KMSParams  any
	Thread     int
}

// InstanceConfig mirrors the SDK's network configuration object.
type InstanceConfig struct {
	ACLContractAddress                        string
	KMSContractAddress                        string
	InputVerifierContractAddress              string
	VerifyingContractAddressDecryption        string
	VerifyingContractAddressInputVerification string
	ChainID                                   uint64
	GatewayChainID                            uint64
	RelayerURL                                string

	// Network is the RPC URL or the provider object the instance talks to.
	Network any

	PublicKey    *ftypes.PublicKey
	PublicParams ftypes.PublicParams
}

// SDK is the typed capability surface of the vendor relayer SDK.
type SDK interface {
	InitSDK(ctx context.Context, opts *InitOptions) (bool, error)
	CreateInstance(ctx context.Context, cfg InstanceConfig) (ftypes.Instance, error)
	SepoliaConfig() InstanceConfig
}

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Adapt turns an untyped host object into an SDK or fails with an
// sdk-shape error.
func Adapt(v any) (SDK, error) {
	if v == nil {
		return nil, shared.Mark(errors.New("relayer sdk object is nil"), shared.KindSDKShape)
	}
	sdk, ok := v.(SDK)
	if !ok {
		return nil, shared.Mark(
			errors.Newf("relayer sdk object %T does not provide InitSDK, CreateInstance and SepoliaConfig", v),
			shared.KindSDKShape,
		)
	}
	if acl := sdk.SepoliaConfig().ACLContractAddress; !IsValidAddress(acl) {
		return nil, shared.Mark(
			errors.Newf("relayer sdk SepoliaConfig has invalid ACL address %q", acl),
			shared.KindSDKShape,
		)
	}
	return sdk, nil
}
