package wallet

import (
	"context"
	"strconv"

	"github.com/mrz1836/poktwallet/internal/metrics"
	"github.com/mrz1836/poktwallet/internal/store"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// KeyActiveAddress holds the address of the wallet used by single-wallet flows.
const KeyActiveAddress = "walletAddress"

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Registry stores one list of records per account model plus a legacy
// single-record slot per model.
//
// Upsert is not atomic across Registry instances sharing a store: two
// concurrent upserts of the same address may both pass the existence check
// and both append. List filters duplicates on read, so at most one record per
// address is ever visible; which writer's record survives is unspecified.
type Registry struct {
	store   store.Store
	logger  Logger
	metrics *metrics.Metrics
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryMetrics overrides the metrics sink.
func WithRegistryMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates a registry over s. A nil logger discards output.
func NewRegistry(s store.Store, logger Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}
	r := &Registry{store: s, logger: logger, metrics: metrics.Global}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upsert appends record to the model's list unless its address is already
// present, in which case the existing record is returned unchanged.
func (r *Registry) Upsert(ctx context.Context, model AccountModel, record *Record) (*Record, bool, error) {
	if !model.Valid() {
		return nil, false, walleterr.ErrInvalidAccountModel
	}

	list, err := r.load(ctx, model)
	if err != nil {
		return nil, false, err
	}
	for _, existing := range list {
		if sameAddress(existing.Address, record.Address) {
			r.logger.Debug("registry: %s %s already present", model, existing.Address)
			return existing, false, nil
		}
	}

	stored := *record
	stored.AccountModel = model
	stored.Network = model
	if stored.ID == "" || stored.CreatedAt.IsZero() {
		fresh := NewRecord(model, stored.Address, stored.SerializedSecret, stored.SecretOrigin)
		if stored.ID == "" {
			stored.ID = fresh.ID
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = fresh.CreatedAt
		}
	}

	if err := r.store.Set(ctx, model.listKey(), append(list, &stored)); err != nil {
		return nil, false, walleterr.Wrap(err, "saving %s wallets", model)
	}
	r.logger.Debug("registry: added %s %s", model, stored.Address)
	return &stored, true, nil
}

// List returns the model's records in insertion order, followed by the
// legacy slot record when its address is not already listed. Duplicate
// addresses are dropped and the stored list is rewritten best-effort.
func (r *Registry) List(ctx context.Context, model AccountModel) ([]*Record, error) {
	if !model.Valid() {
		return nil, walleterr.ErrInvalidAccountModel
	}

	list, err := r.load(ctx, model)
	if err != nil {
		return nil, err
	}

	out := make([]*Record, 0, len(list)+1)
	duplicates := 0
	for _, rec := range list {
		if containsAddress(out, rec.Address) {
			duplicates++
			continue
		}
		out = append(out, rec)
	}

	if duplicates > 0 {
		r.repair(ctx, model, out, duplicates)
	}

	legacy, err := r.Legacy(ctx, model)
	if err != nil {
		return nil, err
	}
	if legacy != nil && !containsAddress(out, legacy.Address) {
		out = append(out, legacy)
	}
	return out, nil
}

// repair rewrites a deduplicated list. Failures are only logged.
func (r *Registry) repair(ctx context.Context, model AccountModel, deduped []*Record, duplicates int) {
	r.metrics.RecordRegistryInconsistency()
	inconsistency := walleterr.WithDetails(walleterr.ErrRegistryInconsistency, map[string]string{
		"model":      string(model),
		"duplicates": strconv.Itoa(duplicates),
	})
	r.logger.Error("registry: %v", inconsistency)

	if err := r.store.Set(ctx, model.listKey(), deduped); err != nil {
		r.logger.Error("registry: rewriting %s wallets: %v", model, err)
	}
}

// FindByAddress returns the listed record with address, compared
// case-insensitively.
func (r *Registry) FindByAddress(ctx context.Context, model AccountModel, address string) (*Record, error) {
	list, err := r.List(ctx, model)
	if err != nil {
		return nil, err
	}
	for _, rec := range list {
		if sameAddress(rec.Address, address) {
			return rec, nil
		}
	}
	return nil, walleterr.WithDetails(walleterr.ErrRecordNotFound, map[string]string{
		"model":   string(model),
		"address": address,
	})
}

// Find searches every model for address.
func (r *Registry) Find(ctx context.Context, address string) (*Record, error) {
	for _, model := range []AccountModel{ModelMorse, ModelShannon} {
		rec, err := r.FindByAddress(ctx, model, address)
		if err == nil {
			return rec, nil
		}
		if !walleterr.Is(err, walleterr.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, walleterr.WithDetails(walleterr.ErrRecordNotFound, map[string]string{"address": address})
}

// Remove deletes address from the model's list or legacy slot. The active
// wallet pointer is cleared when it names the removed address.
func (r *Registry) Remove(ctx context.Context, model AccountModel, address string) error {
	if !model.Valid() {
		return walleterr.ErrInvalidAccountModel
	}

	list, err := r.load(ctx, model)
	if err != nil {
		return err
	}

	kept := make([]*Record, 0, len(list))
	for _, rec := range list {
		if !sameAddress(rec.Address, address) {
			kept = append(kept, rec)
		}
	}

	removed := false
	if len(kept) != len(list) {
		if err := r.store.Set(ctx, model.listKey(), kept); err != nil {
			return walleterr.Wrap(err, "saving %s wallets", model)
		}
		removed = true
	}

	legacy, err := r.Legacy(ctx, model)
	if err != nil {
		return err
	}
	if legacy != nil && sameAddress(legacy.Address, address) {
		if err := r.store.Remove(ctx, model.legacyKey()); err != nil {
			return walleterr.Wrap(err, "removing legacy %s wallet", model)
		}
		removed = true
	}

	if !removed {
		return walleterr.WithDetails(walleterr.ErrRecordNotFound, map[string]string{
			"model":   string(model),
			"address": address,
		})
	}

	active, err := r.Active(ctx)
	if err != nil {
		return err
	}
	if sameAddress(active, address) {
		if err := r.store.Remove(ctx, KeyActiveAddress); err != nil {
			return walleterr.Wrap(err, "clearing active wallet")
		}
	}
	return nil
}

// Legacy returns the model's legacy slot record, or nil when empty.
func (r *Registry) Legacy(ctx context.Context, model AccountModel) (*Record, error) {
	var rec Record
	found, err := r.store.Get(ctx, model.legacyKey(), &rec)
	if err != nil {
		return nil, walleterr.Wrap(err, "loading legacy %s wallet", model)
	}
	if !found || rec.Address == "" {
		return nil, nil //nolint:nilnil // empty slot
	}
	rec.AccountModel = model
	rec.Network = model
	return &rec, nil
}

// Active returns the active wallet address, or "" when unset.
func (r *Registry) Active(ctx context.Context) (string, error) {
	var address string
	if _, err := r.store.Get(ctx, KeyActiveAddress, &address); err != nil {
		return "", walleterr.Wrap(err, "loading active wallet")
	}
	return address, nil
}

// SetActive records address as the active wallet.
func (r *Registry) SetActive(ctx context.Context, address string) error {
	if err := r.store.Set(ctx, KeyActiveAddress, address); err != nil {
		return walleterr.Wrap(err, "saving active wallet")
	}
	return nil
}

func (r *Registry) load(ctx context.Context, model AccountModel) ([]*Record, error) {
	var list []*Record
	if _, err := r.store.Get(ctx, model.listKey(), &list); err != nil {
		return nil, walleterr.Wrap(err, "loading %s wallets", model)
	}

	out := list[:0]
	for _, rec := range list {
		if rec != nil && rec.Address != "" {
			out = append(out, rec)
		}
	}
	return out, nil
}

func containsAddress(list []*Record, address string) bool {
	for _, rec := range list {
		if sameAddress(rec.Address, address) {
			return true
		}
	}
	return false
}
