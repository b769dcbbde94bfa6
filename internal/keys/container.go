package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Container key-derivation parameters.
const (
	ContainerKDF      = "scrypt"
	ContainerSecParam = "12"

	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltSize     = 16
	nonceSize    = 12
)

var (
	errContainerFields = errors.New("container is missing salt or ciphertext")
	errUnsupportedKDF  = errors.New("unsupported key derivation function")
)

// Container is an encrypted key file: the secret is sealed with AES-256-GCM
// under a scrypt-derived key, salt hex-encoded, ciphertext base64-encoded.
type Container struct {
	KDF        string `json:"kdf"`
	Salt       string `json:"salt"`
	SecParam   string `json:"secparam"`
	Hint       string `json:"hint"`
	Ciphertext string `json:"ciphertext"`
}

// ParseContainer decodes container JSON.
func ParseContainer(raw string) (*Container, error) {
	var c Container
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &c); err != nil {
		return nil, fmt.Errorf("parsing container: %w", err)
	}
	if c.Salt == "" || c.Ciphertext == "" {
		return nil, errContainerFields
	}
	if c.KDF != "" && c.KDF != ContainerKDF {
		return nil, fmt.Errorf("%w: %s", errUnsupportedKDF, c.KDF)
	}
	return &c, nil
}

// String returns the container as compact JSON.
func (c *Container) String() string {
	data, _ := json.Marshal(c)
	return string(data)
}

// SealContainer encrypts plaintext under passphrase.
func SealContainer(plaintext []byte, passphrase, hint string) (*Container, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	gcm, nonce, err := containerCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}

	return &Container{
		KDF:        ContainerKDF,
		Salt:       strings.ToUpper(hex.EncodeToString(salt)),
		SecParam:   ContainerSecParam,
		Hint:       hint,
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}, nil
}

// Open decrypts the container. A wrong passphrase yields DECRYPTION_FAILED.
func (c *Container) Open(passphrase string) ([]byte, error) {
	salt, err := hex.DecodeString(c.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(c.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}

	gcm, nonce, err := containerCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, walleterr.ErrDecryptionFailed
	}
	return plaintext, nil
}

// containerCipher derives the AES key from passphrase and salt; the nonce is
// the leading bytes of the derived key.
func containerCipher(passphrase string, salt []byte) (cipher.AEAD, []byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("creating cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	copy(nonce, key[:nonceSize])
	return gcm, nonce, nil
}
