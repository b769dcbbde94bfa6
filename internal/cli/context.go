package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/juju/pubsub/v2"

	"github.com/mrz1836/poktwallet/internal/config"
	"github.com/mrz1836/poktwallet/internal/keys"
	"github.com/mrz1836/poktwallet/internal/metrics"
	"github.com/mrz1836/poktwallet/internal/migration"
	"github.com/mrz1836/poktwallet/internal/network"
	"github.com/mrz1836/poktwallet/internal/output"
	"github.com/mrz1836/poktwallet/internal/store"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// CommandContext holds the services shared by CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Metrics   *metrics.Metrics

	Store    store.Store
	Events   *store.Broadcaster
	Deriver  *keys.Deriver
	Registry *wallet.Registry
	Resolver *network.Resolver
	Importer *wallet.Importer
	Remote   *migration.Client

	unsubscribe func()
	drained     chan struct{}
}

// NewCommandContext opens the configured store and wires the domain services
// on top of it.
func NewCommandContext(ctx context.Context, c *config.Config, l *config.Logger, f *output.Formatter) (*CommandContext, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	home := config.ExpandHome(c.Home)
	if c.Store.Backend != store.BackendMemory {
		if err := os.MkdirAll(home, 0o700); err != nil {
			return nil, walleterr.Wrap(err, "creating %s", home)
		}
	}

	passphrase := ""
	if c.Store.Encrypt && c.Store.Backend == store.BackendFile {
		passphrase = c.Store.Passphrase
		if passphrase == "" {
			pw, err := promptPasswordFn("Store password: ")
			if err != nil {
				return nil, err
			}
			passphrase = string(pw)
			clear(pw)
		}
	}

	inner, err := store.Open(ctx, store.Options{
		Backend:    c.Store.Backend,
		Path:       c.StorePath(),
		Home:       home,
		Passphrase: passphrase,
	})
	if err != nil {
		if errors.Is(err, store.ErrStoreLocked) {
			return nil, walleterr.WithSuggestion(walleterr.Because(walleterr.ErrDecryptionFailed, err, "cannot open wallet store"),
				"set POKTWALLET_STORE_PASSWORD or enter the store password")
		}
		return nil, walleterr.Wrap(err, "opening %s store", c.Store.Backend)
	}

	events := store.NewBroadcaster()
	s := store.NewNotifying(inner, events)

	m := metrics.Global
	deriver := keys.NewDeriver()
	registry := wallet.NewRegistry(s, l, wallet.WithRegistryMetrics(m))

	shannon := c.Networks.Shannon
	resolver, err := network.New(ctx, s, registry, network.Prefixes{
		Mainnet: shannon.MainnetPrefix,
		Testnet: shannon.TestnetPrefix,
	}, l)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	importer := wallet.NewImporter(deriver, registry, resolver, wallet.Prefixes{
		Morse:   c.Networks.Morse.AddressPrefix,
		Shannon: shannon.AddressPrefix,
	}, l, wallet.WithImporterMetrics(m))

	mc := c.Migration
	remote := migration.NewClient(&migration.ClientOptions{
		BaseURL:       mc.BaseURL,
		HealthPath:    mc.HealthPath,
		MigratePath:   mc.MigratePath,
		Timeout:       time.Duration(mc.TimeoutSeconds) * time.Second,
		RatePerSecond: mc.RatePerSecond,
		Burst:         mc.Burst,
		Metrics:       m,
	})

	cc := &CommandContext{
		Config:    c,
		Logger:    l,
		Formatter: f,
		Metrics:   m,
		Store:     s,
		Events:    events,
		Deriver:   deriver,
		Registry:  registry,
		Resolver:  resolver,
		Importer:  importer,
		Remote:    remote,
		drained:   make(chan struct{}),
	}
	cc.watch()
	return cc, nil
}

// watch logs every store write at debug level.
func (c *CommandContext) watch() {
	changes, unsubscribe := c.Events.SubscribeMatch(pubsub.MatchAll, store.DefaultSubscriberBuffer)
	c.unsubscribe = unsubscribe
	go func() {
		defer close(c.drained)
		for ch := range changes {
			c.Logger.Debug("store: %s changed (removed=%t)", ch.Key, ch.Removed)
		}
	}()
}

// Orchestrator returns a migration orchestrator over the shared services.
func (c *CommandContext) Orchestrator() *migration.Orchestrator {
	return migration.NewOrchestrator(migration.Dependencies{
		Importer:      c.Importer,
		Registry:      c.Registry,
		Deriver:       c.Deriver,
		Resolver:      c.Resolver,
		Remote:        c.Remote,
		ShannonPrefix: c.Config.Networks.Shannon.AddressPrefix,
		Logger:        c.Logger,
		Metrics:       c.Metrics,
	})
}

// Recoverer returns the legacy mnemonic recoverer.
func (c *CommandContext) Recoverer() *wallet.Recoverer {
	return wallet.NewRecoverer(c.Registry, c.Logger)
}

// Close stops the change listener and closes the store.
func (c *CommandContext) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
		<-c.drained
		c.unsubscribe = nil
	}
	return c.Store.Close()
}
