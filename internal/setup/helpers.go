package setup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	clientconfig "github.com/quantumauth-io/private-expense-log/cmd/expense-log-client/config"
	"github.com/quantumauth-io/private-expense-log/internal/chains"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/entrystore"
	"github.com/quantumauth-io/private-expense-log/internal/securefile"
	"github.com/quantumauth-io/private-expense-log/internal/wallet"
)

const (
	// PasswordEnv unlocks the wallet without a prompt.
	PasswordEnv = "EL_WALLET_PASSWORD"
	// PrivateKeyEnv seeds a new wallet with an existing key, e.g. a funded
	// hardhat account.
	PrivateKeyEnv = "EL_WALLET_PRIVATE_KEY"
)

type preferences struct {
	ActiveNetwork string `json:"activeNetwork"`
}

func loadPreferences(path string) (preferences, error) {
	return securefile.ReadJSON[preferences](path)
}

func savePreferences(path string, p preferences) error {
	return securefile.WriteJSON(path, p, constants.FilePerm, constants.DirectoryPerm)
}

// dataPath places name under DataDir when set, else in the per-user config
// folder for the current EL_ENV.
func dataPath(cfg *clientconfig.Config, name string) (string, error) {
	if dir := strings.TrimSpace(cfg.ClientSettings.DataDir); dir != "" {
		return filepath.Join(dir, name), nil
	}
	return securefile.DataPath(constants.AppName, name)
}

// pickNetwork prefers an explicit config setting, then the network saved by
// the last switch, then the config default.
func pickNetwork(cfg *clientconfig.Config, prefsPath string, networks []chains.Network) (string, error) {
	name, err := cfg.ActiveNetwork()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfg.ClientSettings.ActiveNetwork) != "" || prefsPath == "" {
		return name, nil
	}
	p, err := loadPreferences(prefsPath)
	if err != nil || p.ActiveNetwork == "" {
		return name, nil
	}
	for _, n := range networks {
		if strings.EqualFold(n.Name, p.ActiveNetwork) {
			return n.Name, nil
		}
	}
	return name, nil
}

// openStore opens the configured decrypted-entry cache. The returned close
// func is never nil.
func openStore(cfg *clientconfig.Config, password []byte) (entrystore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.ClientSettings.StoreBackend {
	case clientconfig.StoreMemory:
		return entrystore.NewMemoryStore(), noop, nil

	case clientconfig.StoreBadger:
		dir, err := dataPath(cfg, constants.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(dir, constants.DirectoryPerm); err != nil {
			return nil, nil, errors.Wrapf(err, "mkdir %s", dir)
		}
		b, err := entrystore.OpenBadger(dir)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil

	default:
		path, err := dataPath(cfg, constants.DecryptedFile)
		if err != nil {
			return nil, nil, err
		}
		return entrystore.NewFileStore(path, password), noop, nil
	}
}

func walletStore(cfg *clientconfig.Config) (*wallet.Store, error) {
	path, err := dataPath(cfg, constants.WalletFile)
	if err != nil {
		return nil, err
	}
	ws := wallet.NewStoreAt(path)
	ws.ImportKeyHex = strings.TrimSpace(os.Getenv(PrivateKeyEnv))
	return ws, nil
}

// unlockPassword reads the wallet password from PasswordEnv or the terminal,
// confirming it when a new wallet is about to be created.
func unlockPassword(ws *wallet.Store) ([]byte, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return []byte(pw), nil
	}

	if _, err := os.Stat(ws.Path); !errors.Is(err, os.ErrNotExist) {
		return wallet.PromptPassword("Wallet password: ")
	}

	ok, err := promptYesNo(fmt.Sprintf("No wallet found at %s. Create one? [y/N]: ", ws.Path))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("wallet creation declined")
	}

	pw, err := wallet.PromptPassword("New wallet password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := wallet.PromptPassword("Confirm password: ")
	if err != nil {
		wallet.Zero(pw)
		return nil, err
	}
	defer wallet.Zero(confirm)
	if !bytes.Equal(pw, confirm) {
		wallet.Zero(pw)
		return nil, errors.New("passwords do not match")
	}
	return pw, nil
}
