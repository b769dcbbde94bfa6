package wallet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrz1836/poktwallet/internal/keys"
	"github.com/mrz1836/poktwallet/internal/metrics"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// NetworkObserver is told about every successful import so it can infer the
// network when the user has not chosen one.
type NetworkObserver interface {
	Observe(ctx context.Context, model AccountModel, address string) error
}

// Prefixes holds the address prefix passed to the KeyDeriver per model.
// Morse uses the empty prefix.
type Prefixes struct {
	Morse   string
	Shannon string
}

func (p Prefixes) forModel(m AccountModel) string {
	if m == ModelMorse {
		return p.Morse
	}
	return p.Shannon
}

// ImportResult describes a successful import.
type ImportResult struct {
	// Record is the stored record for the first (or only) credential.
	Record *Record `json:"record"`

	Kind Kind `json:"-"`

	// Imported lists every stored record; JSON wallet arrays yield several.
	Imported []*Record `json:"imported"`

	// Inserted is false when Record's address was already registered.
	Inserted bool `json:"inserted"`

	// Warnings reports lossy normalization applied to the input.
	Warnings []string `json:"warnings,omitempty"`

	// Passphrase is the one that opened a key container. It is empty when
	// the container only opened on the empty-passphrase retry.
	Passphrase string `json:"-"`
}

// Importer turns raw credential input into stored records.
type Importer struct {
	deriver  keys.KeyDeriver
	registry *Registry
	network  NetworkObserver
	prefixes Prefixes
	logger   Logger
	metrics  *metrics.Metrics
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithImporterMetrics overrides the metrics sink.
func WithImporterMetrics(m *metrics.Metrics) ImporterOption {
	return func(i *Importer) { i.metrics = m }
}

// NewImporter creates an importer. network may be nil.
func NewImporter(deriver keys.KeyDeriver, registry *Registry, network NetworkObserver, prefixes Prefixes, logger Logger, opts ...ImporterOption) *Importer {
	if logger == nil {
		logger = nopLogger{}
	}
	i := &Importer{
		deriver:  deriver,
		registry: registry,
		network:  network,
		prefixes: prefixes,
		logger:   logger,
		metrics:  metrics.Global,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import classifies code, derives its address for model, and stores it.
// On success the record is registered, made active, and reported to the
// network observer. Every failure is an IMPORT_FAILED error whose cause
// explains what went wrong.
func (i *Importer) Import(ctx context.Context, code, passphrase string, model AccountModel) (result *ImportResult, err error) {
	defer func() { i.metrics.RecordImport(err) }()

	if !model.Valid() {
		return nil, importFailed(walleterr.ErrInvalidAccountModel)
	}

	c := Classify(code)
	var (
		records  []*Record
		warnings []string
		opened   string
	)

	switch c.Kind {
	case KindPPK:
		records, opened, err = i.fromContainer(c, passphrase, model)
	case KindJSONWallet:
		records, err = i.fromJSONWallet(c, model)
	case KindHexPrivateKey:
		records, warnings, err = i.fromHex(c, model)
	case KindMnemonic:
		records, err = i.fromMnemonic(c, model)
	case KindUnrecognized:
		err = unrecognized(code)
	}
	if err != nil {
		return nil, importFailed(err)
	}

	result = &ImportResult{Kind: c.Kind, Warnings: warnings, Passphrase: opened}
	for idx, rec := range records {
		stored, inserted, upsertErr := i.registry.Upsert(ctx, model, rec)
		if upsertErr != nil {
			return nil, importFailed(upsertErr)
		}
		result.Imported = append(result.Imported, stored)
		if idx == 0 {
			result.Record = stored
			result.Inserted = inserted
		}
	}

	if err = i.registry.SetActive(ctx, result.Record.Address); err != nil {
		return nil, importFailed(err)
	}
	if i.network != nil {
		if obsErr := i.network.Observe(ctx, model, result.Record.Address); obsErr != nil {
			i.logger.Error("import: updating network config: %v", obsErr)
		}
	}

	i.logger.Debug("import: %s as %s -> %s (inserted=%t)", c, model, result.Record.Address, result.Inserted)
	return result, nil
}

// fromContainer also returns the passphrase that opened the container.
func (i *Importer) fromContainer(c Classification, passphrase string, model AccountModel) ([]*Record, string, error) {
	if model != ModelMorse {
		return nil, "", morseOnly(c.Kind, model)
	}

	derived, err := i.deriver.FromEncryptedContainer(c.Cleaned(), passphrase)
	if err != nil {
		if passphrase == "" {
			return nil, "", err
		}
		var retryErr error
		derived, retryErr = i.deriver.FromEncryptedContainer(c.Cleaned(), "")
		if retryErr != nil {
			return nil, "", fmt.Errorf("%w; retry without passphrase: %w", err, retryErr)
		}
		i.logger.Debug("import: container opened with empty passphrase")
		passphrase = ""
	}

	rec := NewRecord(model, strings.ToLower(derived.Address), c.Cleaned(), OriginContainer)
	rec.PublicKey = derived.PublicKey
	return []*Record{rec}, passphrase, nil
}

// jsonWallet is the exported Morse wallet object.
type jsonWallet struct {
	Addr    string `json:"addr"`
	Name    string `json:"name"`
	Priv    string `json:"priv"`
	Pass    string `json:"pass,omitempty"`
	Account int    `json:"account"`
}

func (i *Importer) fromJSONWallet(c Classification, model AccountModel) ([]*Record, error) {
	if model != ModelMorse {
		return nil, morseOnly(c.Kind, model)
	}

	var wallets []jsonWallet
	raw := []byte(c.Cleaned())
	if strings.HasPrefix(c.Cleaned(), "[") {
		if err := json.Unmarshal(raw, &wallets); err != nil {
			return nil, fmt.Errorf("parsing wallet list: %w", err)
		}
	} else {
		var w jsonWallet
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("parsing wallet: %w", err)
		}
		wallets = []jsonWallet{w}
	}

	records := make([]*Record, 0, len(wallets))
	for idx, w := range wallets {
		w.Addr = strings.ToLower(strings.TrimSpace(w.Addr))
		if len(w.Addr) != 40 || !isHex(w.Addr) {
			return nil, walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
				"wallet": fmt.Sprint(idx + 1),
				"addr":   w.Addr,
			})
		}
		if w.Name == "" {
			w.Name = "Morse " + w.Addr[:6]
		}

		secret, err := json.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("encoding wallet: %w", err)
		}
		rec := NewRecord(model, w.Addr, string(secret), OriginPrivateKey)
		rec.Name = w.Name
		records = append(records, rec)
	}
	return records, nil
}

func (i *Importer) fromHex(c Classification, model AccountModel) ([]*Record, []string, error) {
	key, err := hex.DecodeString(c.Cleaned())
	if err != nil {
		return nil, nil, fmt.Errorf("decoding hex key: %w", err)
	}
	defer func() { clear(key) }()

	var warnings []string
	if want := model.KeySize(); len(key) != want {
		warning := fitWarning(len(key), want, model)
		key = fitKeyLength(key, want)
		warnings = append(warnings, warning)
		i.metrics.RecordLossyImport()
		i.logger.Error("import: %s", warning)
	}

	derived, err := i.deriver.FromPrivateKeyBytes(key, i.prefixes.forModel(model))
	if err != nil {
		return nil, nil, err
	}

	rec := NewRecord(model, normalizeAddress(model, derived.Address), hex.EncodeToString(key), OriginPrivateKey)
	rec.PublicKey = derived.PublicKey
	return []*Record{rec}, warnings, nil
}

func (i *Importer) fromMnemonic(c Classification, model AccountModel) ([]*Record, error) {
	words := c.Cleaned()
	if n := keys.WordCount(words); n != keys.ShortMnemonicWords && n != keys.LongMnemonicWords {
		return nil, wordCountError(n)
	}

	derived, err := i.deriver.FromMnemonic(words, i.prefixes.forModel(model))
	if err != nil {
		return nil, err
	}

	rec := NewRecord(model, normalizeAddress(model, derived.Address), words, OriginMnemonic)
	rec.PublicKey = derived.PublicKey
	return []*Record{rec}, nil
}

// fitKeyLength forces key to size bytes: short keys are right-padded with
// zeros, long keys keep their trailing bytes.
func fitKeyLength(key []byte, size int) []byte {
	out := make([]byte, size)
	if len(key) < size {
		copy(out, key)
		return out
	}
	copy(out, key[len(key)-size:])
	return out
}

func fitWarning(got, want int, model AccountModel) string {
	action := "padded with zero bytes"
	if got > want {
		action = "truncated to its last bytes"
	}
	return fmt.Sprintf("%d-byte key does not match the %d-byte %s key size; it was %s and the derived address may not be the one you expect",
		got, want, model, action)
}

// normalizeAddress lower-cases Morse hex addresses.
func normalizeAddress(model AccountModel, address string) string {
	if model == ModelMorse {
		return strings.ToLower(address)
	}
	return address
}

func importFailed(cause error) error {
	return walleterr.Because(walleterr.ErrImportFailed, cause, "import failed")
}

func unrecognized(code string) error {
	if looksLikePhrase(code) {
		return wordCountError(keys.WordCount(code))
	}
	return walleterr.ErrClassificationUnrecognized
}

func wordCountError(n int) error {
	return fmt.Errorf("mnemonic has %d words: %w", n, keys.ErrInvalidWordCount)
}

func morseOnly(kind Kind, model AccountModel) error {
	return walleterr.WithDetails(walleterr.ErrInvalidInput, map[string]string{
		"format": kind.String(),
		"reason": fmt.Sprintf("only Morse wallets use this format, not %s", model),
	})
}
