package keys

import (
	"encoding/hex"
	"strings"
)

// Deriver is the default KeyDeriver.
type Deriver struct{}

// NewDeriver returns the default KeyDeriver.
func NewDeriver() *Deriver {
	return &Deriver{}
}

// FromPrivateKeyBytes derives a Morse account when addressPrefix is empty and
// a Shannon account otherwise.
func (d *Deriver) FromPrivateKeyBytes(key []byte, addressPrefix string) (*Derived, error) {
	if addressPrefix == "" {
		return deriveMorse(key)
	}
	return deriveShannon(key, addressPrefix)
}

// FromMnemonic derives the first account of a BIP39 phrase.
func (d *Deriver) FromMnemonic(words, addressPrefix string) (*Derived, error) {
	seed, err := mnemonicSeed(words)
	if err != nil {
		return nil, derivationError(err, "invalid mnemonic")
	}

	if addressPrefix == "" {
		return deriveMorse(morseKeyFromSeed(seed))
	}

	key, err := shannonKeyFromSeed(seed)
	if err != nil {
		return nil, derivationError(err, "deriving shannon key")
	}
	return deriveShannon(key, addressPrefix)
}

// FromEncryptedContainer opens a Morse key container and derives its account.
func (d *Deriver) FromEncryptedContainer(container, passphrase string) (*Derived, error) {
	c, err := ParseContainer(container)
	if err != nil {
		return nil, derivationError(err, "malformed key container")
	}

	plaintext, err := c.Open(passphrase)
	if err != nil {
		return nil, derivationError(err, "could not decrypt key container")
	}

	key, err := hex.DecodeString(strings.TrimSpace(string(plaintext)))
	clear(plaintext)
	if err != nil {
		return nil, derivationError(err, "key container does not hold a hex private key")
	}
	defer clear(key)

	return deriveMorse(key)
}

var _ KeyDeriver = (*Deriver)(nil)
