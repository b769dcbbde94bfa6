package wallet

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Kind is the detected encoding of a credential string.
type Kind int

// Credential kinds, in classification precedence order.
const (
	KindUnrecognized Kind = iota
	KindPPK
	KindJSONWallet
	KindHexPrivateKey
	KindMnemonic
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPPK:
		return "ppk"
	case KindJSONWallet:
		return "json-wallet"
	case KindHexPrivateKey:
		return "hex-private-key"
	case KindMnemonic:
		return "mnemonic"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return "unrecognized"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Kind Kind

	// Model is set for KindHexPrivateKey, derived from the key length.
	Model AccountModel

	cleaned string
}

// Cleaned returns the normalized secret: trimmed JSON, hex without 0x, or
// single-spaced mnemonic words.
func (c Classification) Cleaned() string {
	return c.cleaned
}

// String describes the classification, e.g. "hex-private-key (shannon)".
func (c Classification) String() string {
	if c.Kind == KindHexPrivateKey {
		return c.Kind.String() + " (" + string(c.Model) + ")"
	}
	return c.Kind.String()
}

// predicate reports whether input is one specific encoding.
type predicate func(input string) (Classification, bool)

// classifiers run in order; the first match wins. A container and a JSON
// wallet are both JSON objects, so containers are checked first.
//
//nolint:gochecknoglobals // fixed precedence table
var classifiers = []predicate{
	classifyPPK,
	classifyJSONWallet,
	classifyHexPrivateKey,
	classifyMnemonic,
}

// Classify detects the encoding of input. It never fails; unknown input
// yields KindUnrecognized.
func Classify(input string) Classification {
	for _, p := range classifiers {
		if c, ok := evaluate(p, input); ok {
			return c
		}
	}
	return Classification{Kind: KindUnrecognized}
}

// evaluate runs p, treating a panic as no match.
func evaluate(p predicate, input string) (c Classification, ok bool) {
	defer func() {
		if recover() != nil {
			c, ok = Classification{}, false
		}
	}()
	return p(input)
}

func classifyPPK(input string) (Classification, bool) {
	obj, trimmed, ok := jsonObject(input)
	if !ok {
		return Classification{}, false
	}

	for _, field := range []string{"kdf", "salt", "ciphertext"} {
		if _, ok := stringField(obj, field); !ok {
			return Classification{}, false
		}
	}
	if _, ok := obj["hint"]; !ok {
		return Classification{}, false
	}

	kdf, _ := stringField(obj, "kdf")
	_, hasSecParam := stringField(obj, "secparam")
	if kdf != "scrypt" && !hasSecParam {
		return Classification{}, false
	}

	return Classification{Kind: KindPPK, cleaned: trimmed}, true
}

func classifyJSONWallet(input string) (Classification, bool) {
	trimmed := strings.TrimSpace(input)

	if obj, _, ok := jsonObject(trimmed); ok {
		if hasWalletAddr(obj) {
			return Classification{Kind: KindJSONWallet, cleaned: trimmed}, true
		}
		return Classification{}, false
	}

	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return Classification{}, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &arr); err != nil || len(arr) == 0 {
		return Classification{}, false
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(arr[0], &first); err != nil || !hasWalletAddr(first) {
		return Classification{}, false
	}
	return Classification{Kind: KindJSONWallet, cleaned: trimmed}, true
}

func classifyHexPrivateKey(input string) (Classification, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
		return Classification{}, false
	}

	hexKey := strings.ToLower(stripHexPrefix(trimmed))
	if !isHex(hexKey) {
		return Classification{}, false
	}

	switch len(hexKey) {
	case ModelMorse.KeySize() * 2:
		return Classification{Kind: KindHexPrivateKey, Model: ModelMorse, cleaned: hexKey}, true
	case ModelShannon.KeySize() * 2:
		return Classification{Kind: KindHexPrivateKey, Model: ModelShannon, cleaned: hexKey}, true
	default:
		return Classification{}, false
	}
}

func classifyMnemonic(input string) (Classification, bool) {
	words := strings.Fields(input)
	if len(words) != 12 && len(words) != 24 {
		return Classification{}, false
	}
	return Classification{Kind: KindMnemonic, cleaned: strings.Join(words, " ")}, true
}

// jsonObject parses input as a JSON object if it is brace-delimited.
func jsonObject(input string) (map[string]json.RawMessage, string, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return nil, "", false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, "", false
	}
	return obj, trimmed, true
}

func stringField(obj map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := obj[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func hasWalletAddr(obj map[string]json.RawMessage) bool {
	addr, ok := stringField(obj, "addr")
	return ok && len(addr) == 40 && isHex(addr)
}

func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return false
		}
	}
	return true
}

// looksLikePhrase reports whether input is several purely alphabetic words,
// i.e. a mnemonic with the wrong word count.
func looksLikePhrase(input string) bool {
	words := strings.Fields(input)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}
