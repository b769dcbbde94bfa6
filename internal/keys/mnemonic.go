package keys

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"
)

// Mnemonic word counts accepted for import and generation.
const (
	ShortMnemonicWords = 12
	LongMnemonicWords  = 24
)

var (
	// ErrInvalidWordCount indicates the mnemonic must be 12 or 24 words.
	ErrInvalidWordCount = errors.New("word count must be 12 or 24")

	// ErrInvalidMnemonic indicates the mnemonic failed BIP39 validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// GenerateMnemonic creates a new BIP39 phrase of 12 or 24 words.
func GenerateMnemonic(wordCount int) (string, error) {
	var bitSize int
	switch wordCount {
	case ShortMnemonicWords:
		bitSize = 128
	case LongMnemonicWords:
		bitSize = 256
	default:
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// WordCount returns the number of whitespace-separated words in input.
func WordCount(input string) int {
	return len(strings.Fields(input))
}

// ValidateMnemonic checks word count, word validity, and checksum.
func ValidateMnemonic(mnemonic string) error {
	normalized := NormalizeMnemonicInput(mnemonic)

	count := WordCount(normalized)
	if count != ShortMnemonicWords && count != LongMnemonicWords {
		return fmt.Errorf("%w: got %d", ErrInvalidWordCount, count)
	}

	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		if typos := DetectTypos(normalized); len(typos) > 0 {
			return fmt.Errorf("%w:\n%s", ErrInvalidMnemonic, FormatTypoSuggestions(typos))
		}
		return ErrInvalidMnemonic
	}
	return nil
}

// NormalizeMnemonicInput lowercases input, strips list numbering and bullets,
// turns commas into spaces, and collapses whitespace.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// mnemonicSeed validates mnemonic and returns its BIP39 seed with an empty
// passphrase.
func mnemonicSeed(mnemonic string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeedWithErrorChecking(NormalizeMnemonicInput(mnemonic), "")
}

// IsValidWord reports whether word is in the BIP39 English list.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// MaxTypoDistance is the largest Levenshtein distance offered as a suggestion.
const MaxTypoDistance = 2

// TypoInfo describes one word that is not in the BIP39 list.
type TypoInfo struct {
	Index      int
	Word       string
	Suggestion string
	Distance   int
}

// SuggestWord returns the closest BIP39 word to input, or "" when nothing is
// within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos lists every word of mnemonic that is not a BIP39 word.
func DetectTypos(mnemonic string) []TypoInfo {
	var typos []TypoInfo
	for i, word := range strings.Fields(NormalizeMnemonicInput(mnemonic)) {
		if IsValidWord(word) {
			continue
		}
		info := TypoInfo{Index: i, Word: word, Suggestion: SuggestWord(word)}
		if info.Suggestion != "" {
			info.Distance = levenshtein.ComputeDistance(word, info.Suggestion)
		}
		typos = append(typos, info)
	}
	return typos
}

// FormatTypoSuggestions renders typos one per line with 1-based positions.
func FormatTypoSuggestions(typos []TypoInfo) string {
	lines := make([]string, 0, len(typos))
	for _, typo := range typos {
		if typo.Suggestion != "" {
			lines = append(lines, fmt.Sprintf("Word %d: '%s' - did you mean '%s'?", typo.Index+1, typo.Word, typo.Suggestion))
			continue
		}
		lines = append(lines, fmt.Sprintf("Word %d: '%s' is not a valid BIP39 word", typo.Index+1, typo.Word))
	}
	return strings.Join(lines, "\n")
}
