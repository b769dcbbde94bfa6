// Package network resolves which account model and network (mainnet or
// testnet) single-wallet flows operate on.
package network

import (
	"context"
	"sync"

	"github.com/mrz1836/poktwallet/internal/keys"
	"github.com/mrz1836/poktwallet/internal/store"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Store keys owned by the resolver.
const (
	KeyIsMainnet   = "isMainnet"
	KeyNetworkType = "pokt_network_type"
)

// Resolution sources.
const (
	SourceMorseRecord = "morse-record"
	SourceExplicit    = "explicit"
	SourceDefault     = "default"
)

// Logger is the logging interface used by the resolver.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Config is the resolved network state.
type Config struct {
	AccountModel wallet.AccountModel `json:"account_model"`
	IsMainnet    bool                `json:"is_mainnet"`

	// Explicit is true once an isMainnet value has been persisted.
	Explicit bool `json:"explicit"`
}

// Resolution is the answer for one address.
type Resolution struct {
	AccountModel wallet.AccountModel `json:"account_model"`
	IsMainnet    bool                `json:"is_mainnet"`
	Source       string              `json:"source"`
}

// Prefixes are the Shannon bech32 prefixes used for inference. When both are
// equal an address cannot reveal its network.
type Prefixes struct {
	Mainnet string
	Testnet string
}

// Default is used when nothing has been saved.
//
//nolint:gochecknoglobals // immutable default
var Default = Config{AccountModel: wallet.ModelShannon, IsMainnet: false}

// Resolver owns the process-wide network state. It reads the store once at
// construction and writes through on every change.
type Resolver struct {
	mu       sync.RWMutex
	store    store.Store
	registry *wallet.Registry
	prefixes Prefixes
	logger   Logger
	current  Config
}

// New loads the persisted network state.
func New(ctx context.Context, s store.Store, registry *wallet.Registry, prefixes Prefixes, logger Logger) (*Resolver, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	r := &Resolver{
		store:    s,
		registry: registry,
		prefixes: prefixes,
		logger:   logger,
		current:  Default,
	}

	var mainnet bool
	found, err := s.Get(ctx, KeyIsMainnet, &mainnet)
	if err != nil {
		return nil, walleterr.Wrap(err, "loading network setting")
	}
	if found {
		r.current.IsMainnet = mainnet
		r.current.Explicit = true
	}

	var networkType string
	if _, err := s.Get(ctx, KeyNetworkType, &networkType); err != nil {
		return nil, walleterr.Wrap(err, "loading network type")
	}
	if networkType != "" {
		model, parseErr := wallet.ParseAccountModel(networkType)
		if parseErr != nil {
			logger.Error("network: ignoring stored network type %q", networkType)
		} else {
			r.current.AccountModel = model
		}
	}

	logger.Debug("network: loaded %s mainnet=%t explicit=%t", r.current.AccountModel, r.current.IsMainnet, r.current.Explicit)
	return r, nil
}

// Current returns the in-memory network state.
func (r *Resolver) Current() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Resolve returns the network for address. A registered Morse address is
// always testnet. Otherwise a persisted choice wins, and absent one the
// default applies. Address prefixes are never consulted here.
func (r *Resolver) Resolve(ctx context.Context, address string) (Resolution, error) {
	if address != "" && r.registry != nil {
		_, err := r.registry.FindByAddress(ctx, wallet.ModelMorse, address)
		if err == nil {
			return Resolution{AccountModel: wallet.ModelMorse, IsMainnet: false, Source: SourceMorseRecord}, nil
		}
		if !walleterr.Is(err, walleterr.ErrRecordNotFound) {
			return Resolution{}, err
		}
	}

	cur := r.Current()
	if cur.Explicit {
		model := cur.AccountModel
		if !model.Valid() {
			model = wallet.ModelShannon
		}
		return Resolution{AccountModel: model, IsMainnet: cur.IsMainnet, Source: SourceExplicit}, nil
	}
	return Resolution{AccountModel: Default.AccountModel, IsMainnet: Default.IsMainnet, Source: SourceDefault}, nil
}

// SetNetwork records an explicit user choice.
func (r *Resolver) SetNetwork(ctx context.Context, model wallet.AccountModel, mainnet bool) error {
	if !model.Valid() {
		return walleterr.ErrInvalidAccountModel
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(ctx, KeyNetworkType, string(model)); err != nil {
		return walleterr.Wrap(err, "saving network type")
	}
	if err := r.store.Set(ctx, KeyIsMainnet, mainnet); err != nil {
		return walleterr.Wrap(err, "saving network setting")
	}
	r.current = Config{AccountModel: model, IsMainnet: mainnet, Explicit: true}
	r.logger.Debug("network: set %s mainnet=%t", model, mainnet)
	return nil
}

// Observe records the network implied by a freshly imported address. It does
// nothing once a network has been persisted.
func (r *Resolver) Observe(ctx context.Context, model wallet.AccountModel, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current.Explicit {
		r.logger.Debug("network: keeping saved setting, ignoring %s", address)
		return nil
	}

	if err := r.store.Set(ctx, KeyNetworkType, string(model)); err != nil {
		return walleterr.Wrap(err, "saving network type")
	}
	r.current.AccountModel = model

	// Morse addresses are always testnet and say nothing about Shannon.
	if model == wallet.ModelMorse {
		return nil
	}

	mainnet, known := r.Infer(model, address)
	if !known {
		return nil
	}
	if err := r.store.Set(ctx, KeyIsMainnet, mainnet); err != nil {
		return walleterr.Wrap(err, "saving network setting")
	}
	r.current.IsMainnet = mainnet
	r.current.Explicit = true
	r.logger.Debug("network: inferred %s mainnet=%t from %s", model, mainnet, address)
	return nil
}

// Infer guesses the network from an address. known is false when the
// address cannot tell mainnet from testnet.
func (r *Resolver) Infer(model wallet.AccountModel, address string) (mainnet, known bool) {
	if model == wallet.ModelMorse {
		return false, true
	}
	if r.prefixes.Mainnet == r.prefixes.Testnet {
		return false, false
	}

	switch keys.AddressPrefix(address) {
	case r.prefixes.Mainnet:
		return true, true
	case r.prefixes.Testnet:
		return false, true
	default:
		return false, false
	}
}

var _ wallet.NetworkObserver = (*Resolver)(nil)
