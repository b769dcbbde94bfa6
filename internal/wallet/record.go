// Package wallet classifies, imports, and stores Morse and Shannon
// credentials.
package wallet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/poktwallet/internal/keys"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// AccountModel identifies one of the two account systems.
type AccountModel string

// Account models.
const (
	ModelMorse   AccountModel = "morse"
	ModelShannon AccountModel = "shannon"
)

// ParseAccountModel parses "morse" or "shannon", case-insensitively.
func ParseAccountModel(s string) (AccountModel, error) {
	m := AccountModel(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", walleterr.WithDetails(walleterr.ErrInvalidAccountModel, map[string]string{"model": s})
	}
	return m, nil
}

// Valid reports whether m is a known model.
func (m AccountModel) Valid() bool {
	return m == ModelMorse || m == ModelShannon
}

// KeySize is the raw private key length in bytes for m.
func (m AccountModel) KeySize() int {
	if m == ModelMorse {
		return keys.MorsePrivateKeySize
	}
	return keys.ShannonPrivateKeySize
}

func (m AccountModel) listKey() string   { return string(m) + "_wallets" }
func (m AccountModel) legacyKey() string { return string(m) + "_wallet" }

// SecretOrigin records how a record's secret was obtained.
type SecretOrigin string

// Secret origins.
const (
	OriginGenerated  SecretOrigin = "generated-from-mnemonic"
	OriginMnemonic   SecretOrigin = "imported-mnemonic"
	OriginPrivateKey SecretOrigin = "imported-private-key"
	OriginContainer  SecretOrigin = "imported-container"
)

// Record is one stored credential.
type Record struct {
	// ID is unique per write and never reused.
	ID string `json:"id"`

	AccountModel AccountModel `json:"account_model"`

	// Address is the dedup key within a model's list.
	Address string `json:"address"`

	Name string `json:"name,omitempty"`

	// SerializedSecret is a mnemonic, hex key, JSON wallet, or container.
	// Its format is not tagged; use Classify to inspect it.
	SerializedSecret string `json:"serialized_secret"`

	SecretOrigin SecretOrigin `json:"secret_origin"`

	// Network duplicates AccountModel.
	Network AccountModel `json:"network"`

	PublicKey string `json:"public_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewRecord creates a record with a fresh ID and creation time.
func NewRecord(model AccountModel, address, secret string, origin SecretOrigin) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:               newRecordID(now),
		AccountModel:     model,
		Address:          address,
		SerializedSecret: secret,
		SecretOrigin:     origin,
		Network:          model,
		CreatedAt:        now,
	}
}

// Redacted returns a copy without the secret.
func (r *Record) Redacted() *Record {
	c := *r
	c.SerializedSecret = ""
	return &c
}

// Label returns the name, or a short form of the address.
func (r *Record) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if len(r.Address) > 12 {
		return r.Address[:6] + "..." + r.Address[len(r.Address)-4:]
	}
	return r.Address
}

func newRecordID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func sameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
