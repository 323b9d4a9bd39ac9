package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var categories = map[uint8]string{
	1: "🍔 Food & Dining",
	2: "🚗 Transportation",
	3: "🛍️ Shopping & Entertainment",
	4: "🏠 Housing & Utilities",
	5: "🏥 Healthcare",
}

var levels = map[uint8]string{
	1:  "Very Low (<$10)",
	2:  "Low ($10-$30)",
	3:  "Moderate Low ($30-$50)",
	4:  "Moderate ($50-$100)",
	5:  "Medium ($100-$200)",
	6:  "Moderate High ($200-$300)",
	7:  "High ($300-$500)",
	8:  "Very High ($500-$1000)",
	9:  "Extremely High ($1000-$2000)",
	10: "Maximum (>$2000)",
}

var satisfaction = map[uint8]string{
	1: "😊 Very Satisfied",
	2: "🙂 Satisfied",
	3: "😐 Neutral",
	4: "😕 Dissatisfied",
	5: "😞 Very Dissatisfied",
}

func CategoryLabel(c uint8) string {
	if l, ok := categories[c]; ok {
		return l
	}
	return fmt.Sprintf("Category %d", c)
}

// CategoryName is the label without its leading emoji.
func CategoryName(c uint8) string {
	l := CategoryLabel(c)
	if _, ok := categories[c]; !ok {
		return l
	}
	if i := strings.IndexByte(l, ' '); i >= 0 {
		return strings.TrimSpace(l[i+1:])
	}
	return l
}

func LevelLabel(l uint8) string {
	if s, ok := levels[l]; ok {
		return s
	}
	return fmt.Sprintf("Level %d", l)
}

func SatisfactionLabel(e uint8) string {
	if s, ok := satisfaction[e]; ok {
		return s
	}
	return fmt.Sprintf("Emotion %d", e)
}

// DateOf parses a YYYYMMDD value. The second result is false when the value
// is not a real calendar day.
func DateOf(date uint32) (time.Time, bool) {
	t, err := time.Parse("20060102", strconv.FormatUint(uint64(date), 10))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders YYYYMMDD as "Jan 2, 2006"; invalid values are printed as is.
func FormatDate(date uint32) string {
	t, ok := DateOf(date)
	if !ok {
		return strconv.FormatUint(uint64(date), 10)
	}
	return t.Format("Jan 2, 2006")
}
