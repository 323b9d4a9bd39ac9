// Package contracts knows where the expense log is deployed on each chain.
package contracts

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
)

const ContractName = "EncryptedPrivateExpenseLog"

var (
	mu        sync.RWMutex
	addresses = map[uint64]common.Address{
		constants.LocalChainID:   common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		constants.SepoliaChainID: common.HexToAddress("0x8D16eC653aC88015D2142fa3495f2b4b935c4447"),
	}
)

// AddressFor returns the deployment address on chainID.
func AddressFor(chainID uint64) (common.Address, error) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := addresses[chainID]
	if !ok || a == (common.Address{}) {
		return common.Address{}, errors.Newf("%s is not deployed on chain %d", ContractName, chainID)
	}
	return a, nil
}

// Register overrides or adds a deployment, e.g. after a local redeploy.
func Register(chainID uint64, addr string) error {
	if !common.IsHexAddress(addr) {
		return errors.Newf("invalid %s address %q for chain %d", ContractName, addr, chainID)
	}
	mu.Lock()
	defer mu.Unlock()
	addresses[chainID] = common.HexToAddress(addr)
	return nil
}
