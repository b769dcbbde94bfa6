package keys

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// slip10Ed25519Key is the HMAC key for SLIP-0010 ed25519 master derivation.
const slip10Ed25519Key = "ed25519 seed"

// deriveMorse derives a Morse account from a 64-byte ed25519 key.
// Only the seed half is used; the public key is recomputed from it.
func deriveMorse(key []byte) (*Derived, error) {
	if len(key) != MorsePrivateKeySize {
		return nil, derivationError(nil, "morse private key must be %d bytes, got %d", MorsePrivateKeySize, len(key))
	}

	priv := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	pub, _ := priv.Public().(ed25519.PublicKey)

	return &Derived{
		Address:   MorseAddress(pub),
		PublicKey: hex.EncodeToString(pub),
	}, nil
}

// MorseAddress returns the hex address for an ed25519 public key.
func MorseAddress(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:MorseAddressSize])
}

// morseKeyFromSeed expands a BIP39 seed into a 64-byte ed25519 key using the
// SLIP-0010 master key.
func morseKeyFromSeed(seed []byte) []byte {
	mac := hmac.New(sha512.New, []byte(slip10Ed25519Key))
	_, _ = mac.Write(seed)
	sum := mac.Sum(nil)
	return ed25519.NewKeyFromSeed(sum[:ed25519.SeedSize])
}
