package migration

import (
	"context"

	"github.com/mrz1836/poktwallet/internal/keys"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// provision reuses the active Shannon wallet, else the most recent one, else
// generates a new 24-word wallet. With a passphrase the new mnemonic is
// stored sealed in a container.
func (o *Orchestrator) provision(ctx context.Context, passphrase string) (*Provisioned, error) {
	reg := o.deps.Registry

	existing, err := reg.List(ctx, wallet.ModelShannon)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		active, err := reg.Active(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range existing {
			if rec.Address == active {
				return &Provisioned{Record: rec, Reused: true}, nil
			}
		}
		return &Provisioned{Record: existing[len(existing)-1], Reused: true}, nil
	}

	mnemonic, err := keys.GenerateMnemonic(keys.LongMnemonicWords)
	if err != nil {
		return nil, walleterr.Wrap(err, "generating mnemonic")
	}

	derived, err := o.deps.Deriver.FromMnemonic(mnemonic, o.deps.ShannonPrefix)
	if err != nil {
		return nil, err
	}

	secret := mnemonic
	if passphrase != "" {
		container, sealErr := keys.SealContainer([]byte(mnemonic), passphrase, "")
		if sealErr != nil {
			return nil, walleterr.Wrap(sealErr, "sealing mnemonic")
		}
		secret = container.String()
	}

	rec := wallet.NewRecord(wallet.ModelShannon, derived.Address, secret, wallet.OriginGenerated)
	rec.PublicKey = derived.PublicKey
	stored, _, err := reg.Upsert(ctx, wallet.ModelShannon, rec)
	if err != nil {
		return nil, err
	}

	if o.deps.Resolver != nil {
		if err := o.deps.Resolver.Observe(ctx, wallet.ModelShannon, stored.Address); err != nil {
			o.deps.Logger.Error("migration: updating network config: %v", err)
		}
	}
	return &Provisioned{Record: stored, Mnemonic: mnemonic}, nil
}
