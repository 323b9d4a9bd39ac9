// Package analysis derives the dashboard statistics from decrypted entries.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

type CategoryStat struct {
	Category   uint8   `json:"category"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	AvgEmotion float64 `json:"avgEmotion"`
}

type TrendPoint struct {
	Date    uint32 `json:"date"`
	Label   string `json:"label"`
	Level   uint8  `json:"level"`
	Emotion uint8  `json:"emotion"`
}

type Direction string

const (
	NoData     Direction = "No Data"
	Stable     Direction = "Stable"
	Increasing Direction = "Increasing"
	Decreasing Direction = "Decreasing"
)

// SpendingTrend compares the mean level of the later half of the entries
// with the earlier half.
type SpendingTrend struct {
	Direction     Direction `json:"direction"`
	ChangePercent float64   `json:"changePercent"`
}

type Summary struct {
	Total                  int            `json:"total"`
	Categories             []CategoryStat `json:"categories"`
	Trend                  []TrendPoint   `json:"trend"`
	EmotionLevelCorr       float64        `json:"emotionLevelCorrelation"`
	Spending               SpendingTrend  `json:"spending"`
	TopCategory            *CategoryStat  `json:"topCategory,omitempty"`
	EntriesPerWeek         float64        `json:"entriesPerWeek"`
	AverageLevel           float64        `json:"averageLevel"`
	AverageEmotion         float64        `json:"averageEmotion"`
	TopCategoryDescription string         `json:"topCategoryDescription"`
}

// CategorySatisfaction averages the emotion score per category, highest first.
func CategorySatisfaction(entries []shared.ExpenseEntry) []CategoryStat {
	type acc struct{ total, count int }
	by := map[uint8]*acc{}
	for _, e := range entries {
		a, ok := by[e.Category]
		if !ok {
			a = &acc{}
			by[e.Category] = a
		}
		a.total += int(e.Emotion)
		a.count++
	}

	out := make([]CategoryStat, 0, len(by))
	for c, a := range by {
		out = append(out, CategoryStat{
			Category:   c,
			Name:       CategoryName(c),
			Count:      a.count,
			AvgEmotion: round(float64(a.total)/float64(a.count), 2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgEmotion != out[j].AvgEmotion {
			return out[i].AvgEmotion > out[j].AvgEmotion
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// PressureTrend is the level series ordered by date.
func PressureTrend(entries []shared.ExpenseEntry) []TrendPoint {
	sorted := byDate(entries)
	out := make([]TrendPoint, len(sorted))
	for i, e := range sorted {
		out[i] = TrendPoint{Date: e.Date, Label: FormatDate(e.Date), Level: e.Level, Emotion: e.Emotion}
	}
	return out
}

// EmotionLevelCorrelation is the Pearson coefficient between emotion and
// level, rounded to three places. It is 0 for fewer than two entries or when
// either series has no variance.
func EmotionLevelCorrelation(entries []shared.ExpenseEntry) float64 {
	n := float64(len(entries))
	if n < 2 {
		return 0
	}
	var sx, sy, sxy, sx2, sy2 float64
	for _, e := range entries {
		x, y := float64(e.Emotion), float64(e.Level)
		sx += x
		sy += y
		sxy += x * y
		sx2 += x * x
		sy2 += y * y
	}
	den := math.Sqrt(n*sx2-sx*sx) * math.Sqrt(n*sy2-sy*sy)
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return round((n*sxy-sx*sy)/den, 3)
}

// Spending classifies the change as Stable below 5%.
func Spending(entries []shared.ExpenseEntry) SpendingTrend {
	if len(entries) < 2 {
		return SpendingTrend{Direction: NoData}
	}
	sorted := byDate(entries)
	half := len(sorted) / 2
	first, second := meanLevel(sorted[:half]), meanLevel(sorted[half:])
	if first == 0 {
		return SpendingTrend{Direction: NoData}
	}

	change := round((second-first)/first*100, 1)
	switch {
	case math.Abs(change) < 5:
		return SpendingTrend{Direction: Stable, ChangePercent: change}
	case change > 0:
		return SpendingTrend{Direction: Increasing, ChangePercent: change}
	default:
		return SpendingTrend{Direction: Decreasing, ChangePercent: change}
	}
}

// TopCategory is the most frequent category; ties go to the lower id.
func TopCategory(entries []shared.ExpenseEntry) *CategoryStat {
	stats := CategorySatisfaction(entries)
	if len(stats) == 0 {
		return nil
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	top := stats[0]
	return &top
}

// EntriesPerWeek spreads the entries over the calendar span between the first
// and last date, counting at least one day.
func EntriesPerWeek(entries []shared.ExpenseEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sorted := byDate(entries)
	first, ok1 := DateOf(sorted[0].Date)
	last, ok2 := DateOf(sorted[len(sorted)-1].Date)
	days := 1.0
	if ok1 && ok2 {
		days = math.Max(1, math.Ceil(last.Sub(first).Hours()/24))
	}
	return round(float64(len(entries))/(days/7), 1)
}

func Summarize(entries []shared.ExpenseEntry) Summary {
	s := Summary{
		Total:            len(entries),
		Categories:       CategorySatisfaction(entries),
		Trend:            PressureTrend(entries),
		EmotionLevelCorr: EmotionLevelCorrelation(entries),
		Spending:         Spending(entries),
		TopCategory:      TopCategory(entries),
		EntriesPerWeek:   EntriesPerWeek(entries),
	}
	if len(entries) > 0 {
		var lv, em int
		for _, e := range entries {
			lv += int(e.Level)
			em += int(e.Emotion)
		}
		s.AverageLevel = round(float64(lv)/float64(len(entries)), 2)
		s.AverageEmotion = round(float64(em)/float64(len(entries)), 2)
	}
	if s.TopCategory != nil {
		noun := "entries"
		if s.TopCategory.Count == 1 {
			noun = "entry"
		}
		s.TopCategoryDescription = fmt.Sprintf("Most frequent category with %d %s", s.TopCategory.Count, noun)
	}
	return s
}

func byDate(entries []shared.ExpenseEntry) []shared.ExpenseEntry {
	out := append([]shared.ExpenseEntry(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func meanLevel(entries []shared.ExpenseEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum int
	for _, e := range entries {
		sum += int(e.Level)
	}
	return float64(sum) / float64(len(entries))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
