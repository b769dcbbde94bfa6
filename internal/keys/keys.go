// Package keys derives account addresses from raw secret material for both
// account models, and seals/opens encrypted key containers.
package keys

import (
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Secret sizes per account model.
const (
	// MorsePrivateKeySize is an ed25519 private key (seed followed by public key).
	MorsePrivateKeySize = 64

	// ShannonPrivateKeySize is a secp256k1 scalar.
	ShannonPrivateKeySize = 32

	// MorseAddressSize is the truncated SHA-256 of the public key.
	MorseAddressSize = 20
)

// Derived is the public view of a derived account.
type Derived struct {
	// Address is the model-specific account identifier.
	Address string `json:"address"`

	// PublicKey is the hex-encoded public key.
	PublicKey string `json:"public_key"`
}

// KeyDeriver turns secret material into an address and public key.
//
// An empty address prefix selects the Morse scheme; a non-empty prefix
// selects Shannon and is used as the bech32 human-readable part.
type KeyDeriver interface {
	// FromPrivateKeyBytes derives from raw private key bytes.
	FromPrivateKeyBytes(key []byte, addressPrefix string) (*Derived, error)

	// FromMnemonic derives from a BIP39 phrase.
	FromMnemonic(words, addressPrefix string) (*Derived, error)

	// FromEncryptedContainer decrypts a Morse key container and derives from it.
	FromEncryptedContainer(container, passphrase string) (*Derived, error)
}

// derivationError wraps cause as a DERIVATION_FAILED error.
func derivationError(cause error, format string, args ...any) error {
	return walleterr.Because(walleterr.ErrDerivationFailed, cause, format, args...)
}
