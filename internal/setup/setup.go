package setup

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	clientconfig "github.com/quantumauth-io/private-expense-log/cmd/expense-log-client/config"
	"github.com/quantumauth-io/private-expense-log/internal/chains"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/contracts"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm"
	clienthttp "github.com/quantumauth-io/private-expense-log/internal/http"
	"github.com/quantumauth-io/private-expense-log/internal/relayer"
	"github.com/quantumauth-io/private-expense-log/internal/session"
	"github.com/quantumauth-io/private-expense-log/internal/wallet"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

func Run(ctx context.Context, build BuildInfo) error {
	log.Info(constants.AppName,
		"version", build.Version,
		"commit", build.Commit,
		"build_date", build.BuildDate,
	)

	// ---- Config
	cfg, err := clientconfig.Load()
	if err != nil {
		return err
	}
	if err := cfg.InjectInfuraKeyFromEnv(); err != nil {
		return err
	}
	for chainID, addr := range cfg.ContractAddresses() {
		if err := contracts.Register(chainID, addr.Hex()); err != nil {
			return err
		}
	}

	// ---- Wallet
	ws, err := walletStore(cfg)
	if err != nil {
		return err
	}
	pwd, err := unlockPassword(ws)
	if err != nil {
		return err
	}
	defer wallet.Zero(pwd)

	signer, err := ws.Ensure(pwd)
	if err != nil {
		return err
	}
	log.Info("wallet unlocked", "address", signer.Address().Hex())

	// ---- Chains
	prefsPath, err := dataPath(cfg, constants.PreferencesFile)
	if err != nil {
		return err
	}
	networks := chains.NetworksFromConfig(cfg.EthNetworks)
	active, err := pickNetwork(cfg, prefsPath, networks)
	if err != nil {
		return err
	}
	chainSvc, err := chains.New(ctx, chains.Config{
		Networks:             networks,
		DefaultActiveNetwork: active,
		PreferredRPCName:     cfg.EthNetworks.ActiveRPC,
	})
	if err != nil {
		return err
	}
	defer chainSvc.Close()

	// ---- Relayer runtime + FHE session
	if u := strings.TrimSpace(cfg.Relayer.URL); u != "" {
		relayer.Default().SetSource(relayer.NewHTTPSource(u, nil))
	}
	mockChains := fhevm.MergeMockChains(cfg.MockChainMap())
	sess := session.New(fhevm.NewFactory(), mockChains)
	defer sess.Close()

	// ---- Decrypted-entry cache
	store, closeStore, err := openStore(cfg, pwd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Error("entry store close failed", "error", cerr)
		}
	}()

	app, err := NewApp(AppDeps{
		Chains:     chainSvc,
		Session:    sess,
		Signer:     signer,
		Cache:      store,
		MockChains: mockChains,
		PrefsPath:  prefsPath,
	})
	if err != nil {
		return err
	}

	// ---- HTTP server
	origins := cfg.ClientSettings.AllowedOrigins
	handler := clienthttp.NewRouter(clienthttp.NewHandler(app, origins), origins)

	listenAddr := net.JoinHostPort(cfg.ClientSettings.LocalHost, cfg.ClientSettings.Port)
	server := &http.Server{Addr: listenAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("HTTP server listening", "addr", listenAddr)
		if serr := server.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", serr)
		}
	}()

	// ---- graceful shutdown
	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if serr := server.Shutdown(shutdownCtx); serr != nil {
		log.Error("HTTP server shutdown failed", "error", serr)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
	return nil
}
