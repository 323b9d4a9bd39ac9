package http

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quantumauth-io/private-expense-log/internal/expenselog"
	"github.com/quantumauth-io/private-expense-log/internal/session"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// Backend is the running client behind the API.
type Backend interface {
	Session() *session.Session
	// Expenses returns the facade for the active network. It is replaced on
	// a network switch.
	Expenses() *expenselog.Service
	Account() common.Address
	Network() Network
	Networks() []string
	SwitchNetwork(ctx context.Context, name string) (Network, error)
}

type Handler struct {
	b        Backend
	origins  map[string]struct{}
	upgrader websocket.Upgrader
}

func NewHandler(b Backend, allowedOrigins []string) *Handler {
	h := &Handler{b: b, origins: make(map[string]struct{})}
	for _, o := range uniqueOrigins(allowedOrigins) {
		h.origins[o] = struct{}{}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin lets through non-browser clients and the configured UI origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	raw := r.Header.Get("Origin")
	if raw == "" {
		return true
	}
	_, ok := h.origins[normalizeOrigin(raw)]
	return ok
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/account
func (h *Handler) Account(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		JSONKeyAddress: h.b.Account().Hex(),
		"network":      h.b.Network(),
	})
}

// GET /api/networks
func (h *Handler) Networks(c *gin.Context) {
	c.JSON(http.StatusOK, networksRes{Active: h.b.Network(), Networks: h.b.Networks()})
}

// POST /api/network
func (h *Handler) SwitchNetwork(c *gin.Context) {
	var req switchNetworkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: err.Error()})
		return
	}
	n, err := h.b.SwitchNetwork(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusOK, n)
}

// GET /api/session
func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionRes(h.b.Session().Snapshot()))
}

// POST /api/session/refresh[?wait=true]
func (h *Handler) RefreshSession(c *gin.Context) {
	s := h.b.Session()
	s.Refresh()
	if c.Query("wait") != "true" {
		c.JSON(http.StatusAccepted, toSessionRes(s.Snapshot()))
		return
	}
	snap, err := s.Wait(c.Request.Context())
	if err != nil {
		writeError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusOK, toSessionRes(snap))
}

// GET /api/state
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.b.Expenses().State())
}

// POST /api/entries
func (h *Handler) AddEntry(c *gin.Context) {
	var req addEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: err.Error()})
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidDateText})
		return
	}

	if err := h.b.Expenses().AddEntry(c.Request.Context(), date, req.Category, req.Level, req.Emotion); err != nil {
		writeError(c, err, expenselog.UserMessage(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{JSONKeyOK: true, "date": date})
}

// GET /api/entries?start=YYYYMMDD&end=YYYYMMDD
func (h *Handler) ListEntries(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.b.Expenses().GetAllEntries(c.Request.Context(), start, end))
}

// GET /api/entries/count
func (h *Handler) EntryCount(c *gin.Context) {
	ctx := c.Request.Context()
	svc := h.b.Expenses()

	n, err := svc.EntryCount(ctx)
	if err != nil {
		writeError(c, err, expenselog.UserMessage(err))
		return
	}
	last, err := svc.LastEntryDate(ctx)
	if err != nil {
		writeError(c, err, expenselog.UserMessage(err))
		return
	}
	c.JSON(http.StatusOK, countRes{Count: n, LastDate: last})
}

// GET /api/entries/:date decrypts one entry.
func (h *Handler) DecryptEntry(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	e, err := h.b.Expenses().DecryptEntry(c.Request.Context(), date)
	if err != nil {
		writeError(c, err, expenselog.DecryptMessage(err))
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{JSONKeyError: HTTPErrorNotFoundText})
		return
	}
	c.JSON(http.StatusOK, toEntryRes(*e))
}

// GET /api/entries/cached
func (h *Handler) CachedEntries(c *gin.Context) {
	list, err := h.b.Expenses().CachedEntries()
	if err != nil {
		writeError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusOK, toEntryList(list))
}

// DELETE /api/entries/cached/:date
func (h *Handler) HideEntry(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	if err := h.b.Expenses().HideEntry(date); err != nil {
		writeError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true})
}

// DELETE /api/entries/cached
func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.b.Expenses().ClearCache(); err != nil {
		writeError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true})
}

// GET /api/analysis?start=YYYYMMDD&end=YYYYMMDD
func (h *Handler) Analysis(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	sum, err := h.b.Expenses().Analysis(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err, expenselog.UserMessage(err))
		return
	}
	c.JSON(http.StatusOK, sum)
}
