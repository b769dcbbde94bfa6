package wallet

import (
	"context"
	"fmt"

	"github.com/mrz1836/poktwallet/internal/keys"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// legacyPassphrases are tried after the caller's candidates. Older releases
// sealed generated mnemonics with one of these.
//
//nolint:gochecknoglobals // fixed list
var legacyPassphrases = []string{"", "password", "pocket", "pokt", "morse", "shannon", "123456", "12345678"}

// Recoverer reveals stored mnemonics, trying passphrases when the mnemonic
// was sealed in a container. It weakens secrecy and must only run on an
// explicit user request.
type Recoverer struct {
	registry *Registry
	logger   Logger
}

// NewRecoverer creates a Recoverer.
func NewRecoverer(registry *Registry, logger Logger) *Recoverer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Recoverer{registry: registry, logger: logger}
}

// RecoverMnemonic returns the mnemonic for address, or a sentence explaining
// why none is available. Only store failures are returned as errors.
func (r *Recoverer) RecoverMnemonic(ctx context.Context, model AccountModel, address string, candidates []string) (string, error) {
	rec, err := r.registry.FindByAddress(ctx, model, address)
	if walleterr.Is(err, walleterr.ErrRecordNotFound) {
		return fmt.Sprintf("No %s wallet with address %s was found.", model, address), nil
	}
	if err != nil {
		return "", err
	}

	c := Classify(rec.SerializedSecret)
	if c.Kind == KindMnemonic {
		return c.Cleaned(), nil
	}

	switch rec.SecretOrigin {
	case OriginPrivateKey:
		return "This wallet was imported from a private key and has no mnemonic.", nil
	case OriginContainer:
		return "This wallet was imported from an encrypted key file and has no mnemonic.", nil
	case OriginGenerated, OriginMnemonic:
	}

	if c.Kind != KindPPK {
		return "No mnemonic is stored for this wallet.", nil
	}

	container, err := keys.ParseContainer(c.Cleaned())
	if err != nil {
		return "The stored key container is malformed; the mnemonic cannot be recovered.", nil
	}

	tried := 0
	for _, pass := range append(append([]string{}, candidates...), legacyPassphrases...) {
		tried++
		plaintext, openErr := container.Open(pass)
		if openErr != nil {
			continue
		}
		words := keys.NormalizeMnemonicInput(string(plaintext))
		clear(plaintext)
		if n := keys.WordCount(words); n == keys.ShortMnemonicWords || n == keys.LongMnemonicWords {
			r.logger.Debug("recover: container for %s opened after %d attempts", rec.Address, tried)
			return words, nil
		}
		return "The key container holds a private key, not a mnemonic.", nil
	}

	r.logger.Debug("recover: %d passphrases failed for %s", tried, rec.Address)
	return fmt.Sprintf("The mnemonic could not be recovered: none of %d passphrases opened the container.", tried), nil
}
