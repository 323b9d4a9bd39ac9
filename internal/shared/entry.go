package shared

import (
	"time"

	"github.com/cockroachdb/errors"
)

const (
	MinCategory = 1
	MaxCategory = 5
	MinLevel    = 1
	MaxLevel    = 10
	MinEmotion  = 1
	MaxEmotion  = 5
)

// ExpenseEntry is a decrypted entry. Date is YYYYMMDD.
type ExpenseEntry struct {
	Date      uint32 `json:"date"`
	Category  uint8  `json:"category"`
	Level     uint8  `json:"level"`
	Emotion   uint8  `json:"emotion"`
	Timestamp uint64 `json:"timestamp"`
}

// EncryptedEntry is an entry as stored on chain: three ciphertext handles
// rendered as 0x-prefixed 32-byte hex strings.
type EncryptedEntry struct {
	Date      uint32 `json:"date"`
	Category  string `json:"category"`
	Level     string `json:"level"`
	Emotion   string `json:"emotion"`
	Timestamp uint64 `json:"timestamp"`
}

// ValidateEntry checks the plaintext fields before anything leaves the process.
func ValidateEntry(date uint32, category, level, emotion int) error {
	if date == 0 {
		return &ValidationError{Field: "date", Value: 0, Min: 1}
	}
	if category < MinCategory || category > MaxCategory {
		return &ValidationError{Field: "category", Value: int64(category), Min: MinCategory, Max: MaxCategory}
	}
	if level < MinLevel || level > MaxLevel {
		return &ValidationError{Field: "level", Value: int64(level), Min: MinLevel, Max: MaxLevel}
	}
	if emotion < MinEmotion || emotion > MaxEmotion {
		return &ValidationError{Field: "emotion", Value: int64(emotion), Min: MinEmotion, Max: MaxEmotion}
	}
	return nil
}

// DateFromTime encodes t as YYYYMMDD.
func DateFromTime(t time.Time) uint32 {
	return uint32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// ParseDate accepts "YYYYMMDD" or "YYYY-MM-DD".
func ParseDate(s string) (uint32, error) {
	for _, layout := range []string{"20060102", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateFromTime(t), nil
		}
	}
	return 0, errors.Newf("invalid date %q (want YYYYMMDD)", s)
}
