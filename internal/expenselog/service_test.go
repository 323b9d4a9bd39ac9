package expenselog

import (
	"context"
	"net"
	"syscall"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/entrystore"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc    *Service
	c      *fakeContract
	signer *keySigner
	cache  *entrystore.MemoryStore
}

func newHarness(t *testing.T, inst ftypes.Instance) *harness {
	t.Helper()
	h := &harness{c: newFakeContract(t), signer: newKeySigner(t), cache: entrystore.NewMemoryStore()}
	h.svc = New(Deps{
		Session:         staticSource{inst: inst},
		Contract:        h.c,
		Signer:          h.signer,
		ContractAddress: contractAddr,
		ChainID:         h.c.chainID,
		Cache:           h.cache,
	})
	return h
}

func TestAddAndDecrypt_Direct(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newMock(t))

	require.NoError(t, h.svc.AddEntry(ctx, 20240105, 2, 7, 4))
	assert.Equal(t, State{IsLoading: false, Message: msgAdded}, h.svc.State())

	got, err := h.svc.DecryptEntry(ctx, 20240105)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, shared.ExpenseEntry{Date: 20240105, Category: 2, Level: 7, Emotion: 4, Timestamp: 1_700_000_001}, *got)
	assert.Equal(t, State{Message: msgDecrypted}, h.svc.State())
	assert.Zero(t, h.signer.signCalls, "direct path needs no signature")

	cached, err := h.svc.CachedEntries()
	require.NoError(t, err)
	assert.Equal(t, []shared.ExpenseEntry{*got}, cached)
}

func TestDecrypt_SignedBatch(t *testing.T) {
	tests := []struct {
		name string
		inst func(t *testing.T) ftypes.Instance
	}{
		{"no direct path", func(t *testing.T) ftypes.Instance { return withoutDirect(newMock(t)) }},
		{"direct path fails", func(t *testing.T) ftypes.Instance { return &brokenDirect{signedOnly: withoutDirect(newMock(t))} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, tt.inst(t))

			require.NoError(t, h.svc.AddEntry(ctx, 20240210, 5, 10, 1))
			got, err := h.svc.GetEntry(ctx, 20240210)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, uint8(5), got.Category)
			assert.Equal(t, uint8(10), got.Level)
			assert.Equal(t, uint8(1), got.Emotion)
			assert.Equal(t, 1, h.signer.signCalls)
		})
	}
}

func TestDecrypt_Unsupported(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, bare{Instance: newMock(t)})

	require.NoError(t, h.svc.AddEntry(ctx, 20240301, 1, 1, 1))
	_, err := h.svc.DecryptEntry(ctx, 20240301)
	require.Error(t, err)
	assert.Equal(t, shared.KindUnsupported, shared.KindOf(err))
	assert.Zero(t, h.signer.signCalls)
}

func TestDecrypt_Missing(t *testing.T) {
	h := newHarness(t, newMock(t))
	got, err := h.svc.DecryptEntry(context.Background(), 20240101)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, h.svc.State().IsLoading)
}

func TestDecrypt_Unauthorized(t *testing.T) {
	ctx := context.Background()
	m := newMock(t)
	h := newHarness(t, m)
	user := h.signer.Address()

	// handles bound to a different deployment
	enc, err := m.CreateEncryptedInput(otherAddr, user).Add8(3).Encrypt(ctx)
	require.NoError(t, err)
	h.c.put(user, 20240401, StoredEntry{Category: enc.Handles[0], Level: enc.Handles[0], Emotion: enc.Handles[0]})

	_, err = h.svc.DecryptEntry(ctx, 20240401)
	require.Error(t, err)
	assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	assert.Equal(t, msgUnauthorized, h.svc.State().Message)

	cached, err := h.svc.CachedEntries()
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestDecrypt_SignRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, withoutDirect(newMock(t)))
	require.NoError(t, h.svc.AddEntry(ctx, 20240501, 2, 2, 2))

	h.signer.signErr = &rpcErr{code: 4001, msg: "User denied message signature"}
	_, err := h.svc.DecryptEntry(ctx, 20240501)
	require.Error(t, err)
	assert.Equal(t, shared.KindUserRejected, shared.KindOf(err))
	assert.Equal(t, "Error decrypting: sign decryption request: User denied message signature", h.svc.State().Message)
}

func TestAddEntry_Validation(t *testing.T) {
	tests := []struct {
		name     string
		date     uint32
		cat, lvl int
		emo      int
		field    string
	}{
		{"zero date", 0, 1, 1, 1, "date"},
		{"category low", 20240101, 0, 1, 1, "category"},
		{"category high", 20240101, 6, 1, 1, "category"},
		{"level high", 20240101, 1, 11, 1, "level"},
		{"emotion low", 20240101, 1, 1, 0, "emotion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newMock(t))
			err := h.svc.AddEntry(context.Background(), tt.date, tt.cat, tt.lvl, tt.emo)
			require.Error(t, err)
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))

			var ve *shared.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Zero(t, h.c.calls)
			assert.Equal(t, State{}, h.svc.State())
		})
	}
}

func TestAddEntry_Failures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, h *harness)
		kind    shared.ErrorKind
		message string
	}{
		{
			name: "duplicate date",
			prepare: func(t *testing.T, h *harness) {
				require.NoError(t, h.svc.AddEntry(context.Background(), 20240601, 1, 1, 1))
			},
			kind:    shared.KindEntryExists,
			message: "Error: " + msgEntryExists,
		},
		{
			name: "user rejected",
			prepare: func(_ *testing.T, h *harness) {
				h.c.addErr = &rpcErr{code: 4001, msg: "User denied transaction signature"}
			},
			kind:    shared.KindUserRejected,
			message: "Error: " + msgUserRejected,
		},
		{
			name: "network down",
			prepare: func(_ *testing.T, h *harness) {
				h.c.addErr = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
			},
			kind:    shared.KindNetwork,
			message: "Error: " + msgNetwork,
		},
		{
			name: "other revert",
			prepare: func(t *testing.T, h *harness) {
				h.c.addErr = revertWith(t, "Paused")
			},
			kind:    shared.KindReverted,
			message: "Error: Paused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newMock(t))
			tt.prepare(t, h)

			err := h.svc.AddEntry(context.Background(), 20240601, 3, 3, 3)
			require.Error(t, err)
			assert.Equal(t, tt.kind, shared.KindOf(err))
			assert.Equal(t, State{Message: tt.message}, h.svc.State())
		})
	}
}

func TestAddEntry_DuplicateKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newMock(t))

	require.NoError(t, h.svc.AddEntry(ctx, 20240101, 2, 5, 3))
	err := h.svc.AddEntry(ctx, 20240101, 4, 9, 1)
	assert.Equal(t, shared.KindEntryExists, shared.KindOf(err))

	n, err := h.svc.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	got, err := h.svc.DecryptEntry(ctx, 20240101)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint8(2), got.Category, "first entry is kept")
}

func TestEntriesArePerUser(t *testing.T) {
	ctx := context.Background()
	inst := newMock(t)
	alice := newHarness(t, inst)

	bobSigner := newKeySigner(t)
	bob := New(Deps{
		Session:         staticSource{inst: inst},
		Contract:        alice.c,
		Signer:          bobSigner,
		ContractAddress: contractAddr,
		ChainID:         alice.c.chainID,
		Cache:           entrystore.NewMemoryStore(),
	})

	require.NoError(t, alice.svc.AddEntry(ctx, 20240101, 2, 5, 3))
	require.NoError(t, alice.svc.AddEntry(ctx, 20240102, 3, 7, 4))
	require.NoError(t, bob.AddEntry(ctx, 20240101, 5, 1, 1))

	for _, tt := range []struct {
		name string
		svc  *Service
		user func() common.Address
		want uint64
	}{
		{"alice", alice.svc, alice.signer.Address, 2},
		{"bob", bob, bobSigner.Address, 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.svc.EntryCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)

			ok, err := alice.c.EntryExists(ctx, tt.user(), 20240101)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = alice.c.EntryExists(ctx, tt.user(), 20240102)
			require.NoError(t, err)
			assert.Equal(t, tt.want == 2, ok)
		})
	}

	aliceEntry, err := alice.svc.DecryptEntry(ctx, 20240101)
	require.NoError(t, err)
	bobEntry, err := bob.DecryptEntry(ctx, 20240101)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), aliceEntry.Category)
	assert.Equal(t, uint8(5), bobEntry.Category)

	last, err := alice.svc.LastEntryDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(20240102), last)
	dates := alice.svc.GetAllEntries(ctx, 20240101, 20240102)
	require.Len(t, dates, 2)
	assert.Equal(t, uint32(20240101), dates[0].Date)
	assert.Equal(t, uint32(20240102), dates[1].Date)
}

func TestNotReady(t *testing.T) {
	h := newHarness(t, nil)

	err := h.svc.AddEntry(context.Background(), 20240101, 1, 1, 1)
	assert.Equal(t, shared.KindNotReady, shared.KindOf(err))

	_, err = h.svc.DecryptEntry(context.Background(), 20240101)
	assert.Equal(t, shared.KindNotReady, shared.KindOf(err))

	noSigner := New(Deps{Contract: h.c, ContractAddress: contractAddr})
	assert.Equal(t, []shared.EncryptedEntry{}, noSigner.GetAllEntries(context.Background(), 0, 99999999))
}

func TestGetAllEntries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newMock(t))
	for _, d := range []uint32{20240101, 20240102, 20240103} {
		require.NoError(t, h.svc.AddEntry(ctx, d, 1, 2, 3))
	}
	h.c.readErr[20240102] = errors.New("flaky node")

	got := h.svc.GetAllEntries(ctx, 20240101, 20240131)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(20240101), got[0].Date)
	assert.Equal(t, uint32(20240103), got[1].Date)
	assert.Len(t, got[0].Category, 66)
	assert.NotEqual(t, got[0].Category, got[0].Level)

	h.c.listErr = errors.New("boom")
	assert.Equal(t, []shared.EncryptedEntry{}, h.svc.GetAllEntries(ctx, 20240101, 20240131))
}

func TestCountsAndAnalysis(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newMock(t))
	require.NoError(t, h.svc.AddEntry(ctx, 20240101, 1, 2, 1))
	require.NoError(t, h.svc.AddEntry(ctx, 20240102, 1, 4, 2))
	require.NoError(t, h.svc.AddEntry(ctx, 20240103, 2, 6, 3))

	n, err := h.svc.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	last, err := h.svc.LastEntryDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(20240103), last)

	sum, err := h.svc.Analysis(ctx, 20240101, 20240131)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1.0, sum.EmotionLevelCorr)

	cached, err := h.svc.CachedEntries()
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	require.NoError(t, h.svc.HideEntry(20240102))
	cached, err = h.svc.CachedEntries()
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	require.NoError(t, h.svc.ClearCache())
	cached, err = h.svc.CachedEntries()
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t, newMock(t))
	ch, cancel := h.svc.Subscribe()
	defer cancel()

	assert.Equal(t, State{}, <-ch)
	require.NoError(t, h.svc.AddEntry(context.Background(), 20240701, 1, 1, 1))
	assert.Equal(t, State{Message: msgAdded}, <-ch, "slow readers see the latest state")

	cancel()
	_, open := <-ch
	assert.False(t, open)
}
