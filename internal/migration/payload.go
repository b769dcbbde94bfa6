package migration

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrz1836/poktwallet/internal/wallet"
)

// Secret is the source credential sent as morsePrivateKey. It is either a
// StructuredSecret or a RawSecret.
type Secret interface {
	// Wire returns the string placed in the morsePrivateKey field.
	Wire() (string, error)
}

// StructuredSecret is sent as a JSON document embedded in a string.
type StructuredSecret struct {
	Addr    string `json:"addr"`
	Name    string `json:"name"`
	Priv    string `json:"priv"`
	Pass    string `json:"pass"`
	Account int    `json:"account"`
}

// Wire encodes the secret as JSON text.
func (s StructuredSecret) Wire() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding structured secret: %w", err)
	}
	return string(data), nil
}

// RawSecret is a hex key or mnemonic sent verbatim.
type RawSecret string

// Wire returns the secret unchanged.
func (s RawSecret) Wire() (string, error) {
	return string(s), nil
}

// SecretFor builds the wire secret for a source record. Container secrets
// carry passphrase so the service can open them.
func SecretFor(rec *wallet.Record, passphrase string) (Secret, error) {
	c := wallet.Classify(rec.SerializedSecret)

	switch c.Kind {
	case wallet.KindJSONWallet:
		var s StructuredSecret
		if err := json.Unmarshal([]byte(c.Cleaned()), &s); err != nil {
			return nil, fmt.Errorf("parsing stored wallet: %w", err)
		}
		return s, nil
	case wallet.KindPPK:
		return StructuredSecret{
			Addr: rec.Address,
			Name: rec.Label(),
			Priv: c.Cleaned(),
			Pass: passphrase,
		}, nil
	case wallet.KindHexPrivateKey, wallet.KindMnemonic:
		return RawSecret(c.Cleaned()), nil
	case wallet.KindUnrecognized:
	}
	return RawSecret(strings.TrimSpace(rec.SerializedSecret)), nil
}

// ShannonAddress identifies the destination account.
type ShannonAddress struct {
	Address string `json:"address"`

	// Signature is the destination record's serialized secret, used by the
	// service as its authorization artifact.
	Signature string `json:"signature"`
}

// Payload is the POST /migrate body.
type Payload struct {
	MorsePrivateKey string         `json:"morsePrivateKey"`
	ShannonAddress  ShannonAddress `json:"shannonAddress"`
}

// BuildPayload assembles the request body.
func BuildPayload(source Secret, destination *wallet.Record) (*Payload, error) {
	wire, err := source.Wire()
	if err != nil {
		return nil, err
	}
	return &Payload{
		MorsePrivateKey: wire,
		ShannonAddress: ShannonAddress{
			Address:   destination.Address,
			Signature: destination.SerializedSecret,
		},
	}, nil
}
