package http

import (
	"github.com/quantumauth-io/private-expense-log/internal/analysis"
	"github.com/quantumauth-io/private-expense-log/internal/expenselog"
	"github.com/quantumauth-io/private-expense-log/internal/session"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// Network describes the chain the client is pointed at.
type Network struct {
	Name       string `json:"name"`
	ChainID    uint64 `json:"chainId"`
	ChainIDHex string `json:"chainIdHex,omitempty"`
	RPC        string `json:"rpc"`
	Contract   string `json:"contract"`
	Mock       bool   `json:"mock"`
}

type sessionRes struct {
	Status     session.Status `json:"status"`
	ChainID    uint64         `json:"chainId,omitempty"`
	RequestID  string         `json:"requestId,omitempty"`
	Generation uint64         `json:"generation"`
	Error      string         `json:"error,omitempty"`
	Kind       string         `json:"kind,omitempty"`
}

func toSessionRes(s session.Snapshot) sessionRes {
	out := sessionRes{
		Status:     s.Status,
		ChainID:    s.ChainID,
		RequestID:  s.RequestID,
		Generation: s.Generation,
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
		out.Kind = shared.KindOf(s.Err).String()
	}
	return out
}

// wsMessage is one frame on the session stream.
type wsMessage struct {
	Type    string            `json:"type"`
	Session *sessionRes       `json:"session,omitempty"`
	State   *expenselog.State `json:"state,omitempty"`
}

type switchNetworkReq struct {
	Name string `json:"name" binding:"required"`
}

type networksRes struct {
	Active   Network  `json:"active"`
	Networks []string `json:"networks"`
}

// Range checks happen in the facade so the error names the field.
type addEntryReq struct {
	Date     string `json:"date" binding:"required"`
	Category int    `json:"category"`
	Level    int    `json:"level"`
	Emotion  int    `json:"emotion"`
}

type entryRes struct {
	shared.ExpenseEntry
	DateLabel    string `json:"dateLabel"`
	CategoryName string `json:"categoryName"`
	LevelLabel   string `json:"levelLabel"`
	EmotionLabel string `json:"emotionLabel"`
}

func toEntryRes(e shared.ExpenseEntry) entryRes {
	return entryRes{
		ExpenseEntry: e,
		DateLabel:    analysis.FormatDate(e.Date),
		CategoryName: analysis.CategoryName(e.Category),
		LevelLabel:   analysis.LevelLabel(e.Level),
		EmotionLabel: analysis.SatisfactionLabel(e.Emotion),
	}
}

func toEntryList(in []shared.ExpenseEntry) []entryRes {
	out := make([]entryRes, 0, len(in))
	for _, e := range in {
		out = append(out, toEntryRes(e))
	}
	return out
}

type countRes struct {
	Count    uint64 `json:"count"`
	LastDate uint32 `json:"lastDate"`
}
