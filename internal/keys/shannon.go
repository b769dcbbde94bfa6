package keys

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip32"
)

// shannonPath is m/44'/118'/0'/0/0.
var shannonPath = []uint32{
	bip32.FirstHardenedChild + 44,
	bip32.FirstHardenedChild + 118,
	bip32.FirstHardenedChild,
	0,
	0,
}

var errInvalidScalar = errors.New("private key is zero or exceeds the curve order")

// deriveShannon derives a bech32 Shannon account from a 32-byte secp256k1 key.
func deriveShannon(key []byte, prefix string) (*Derived, error) {
	if len(key) != ShannonPrivateKeySize {
		return nil, derivationError(nil, "shannon private key must be %d bytes, got %d", ShannonPrivateKeySize, len(key))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(key); overflow || scalar.IsZero() {
		return nil, derivationError(errInvalidScalar, "invalid shannon private key")
	}

	pub := secp256k1.NewPrivateKey(&scalar).PubKey().SerializeCompressed()
	address, err := ShannonAddress(pub, prefix)
	if err != nil {
		return nil, derivationError(err, "encoding shannon address")
	}

	return &Derived{
		Address:   address,
		PublicKey: hex.EncodeToString(pub),
	}, nil
}

// ShannonAddress bech32-encodes RIPEMD160(SHA256(pub)) with prefix.
func ShannonAddress(pub []byte, prefix string) (string, error) {
	converted, err := bech32.ConvertBits(btcutil.Hash160(pub), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, converted)
}

// AddressPrefix returns the human-readable part of a bech32 address, or ""
// when address is not valid bech32.
func AddressPrefix(address string) string {
	hrp, _, err := bech32.Decode(address)
	if err != nil {
		return ""
	}
	return hrp
}

// shannonKeyFromSeed walks the Shannon BIP44 path from a BIP39 seed.
func shannonKeyFromSeed(seed []byte) ([]byte, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("creating master key: %w", err)
	}
	for _, idx := range shannonPath {
		if key, err = key.NewChildKey(idx); err != nil {
			return nil, fmt.Errorf("deriving child %d: %w", idx, err)
		}
	}
	return key.Key, nil
}
