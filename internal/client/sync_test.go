package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luyingjie/aigames-client/internal/card"
	"github.com/luyingjie/aigames-client/internal/protocol"
)

func TestFetchGameStateNoRoom(t *testing.T) {
	f := newFakeTransport()
	c := newTestClient(f)
	c.FetchGameState(context.Background())
	assert.Equal(t, 0, f.total())
}

func TestFetchGameStateAppliesStateHandAndReadiness(t *testing.T) {
	f := newFakeTransport()
	gs := protocol.GameState{
		CurrentTurn: 1,
		Players:     []*protocol.Player{seat("alice", 0, true), seat("bob", 1, false), nil},
	}
	hand := []card.Card{{Suit: card.Spades, Value: card.Three}}
	f.on(protocol.RouteGameState, ok(gs))
	f.on(protocol.RoutePlayerHand, ok(protocol.PlayerHandData{Cards: hand}))
	c := loggedIn(f, testRoom(), nil, nil)

	c.FetchGameState(context.Background())

	snap := c.Snapshot()
	require.NotNil(t, snap.Game)
	assert.Equal(t, 1, snap.Game.CurrentTurn)
	require.Len(t, snap.Hand, 1)
	assert.True(t, snap.Ready, "readiness mirrors the server's view of alice")
}

func TestFetchGameStatePartialSuccess(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteGameState, ok(protocol.GameState{CurrentTurn: 2}))
	f.on(protocol.RoutePlayerHand, fail(protocol.StatusGameNotStarted, "游戏未开始"))
	old := []card.Card{{Suit: card.Hearts, Value: card.King}}
	c := loggedIn(f, testRoom(), nil, old)

	c.FetchGameState(context.Background())

	snap := c.Snapshot()
	require.NotNil(t, snap.Game, "state fetch stays applied despite hand failure")
	assert.Equal(t, 2, snap.Game.CurrentTurn)
	require.Len(t, snap.Hand, 1, "prior hand survives a failed hand fetch")
	assert.Empty(t, snap.Error, "sync failures are never surfaced")
}

func TestFetchGameStateReplacedHandClearsSelection(t *testing.T) {
	f := newFakeTransport()
	oldHand := []card.Card{{Suit: card.Spades, Value: card.Three}, {Suit: card.Spades, Value: card.Four}}
	newHand := []card.Card{{Suit: card.Spades, Value: card.Four}}
	f.on(protocol.RouteGameState, ok(protocol.GameState{}))
	f.on(protocol.RoutePlayerHand, ok(protocol.PlayerHandData{Cards: newHand}))
	c := loggedIn(f, testRoom(), nil, oldHand)
	require.NoError(t, c.ToggleCardSelection(1))

	c.FetchGameState(context.Background())

	snap := c.Snapshot()
	assert.Empty(t, snap.Selected, "selection is invalidated when the hand changes")
	require.Len(t, snap.Hand, 1)
}

func TestFetchGameStateIdenticalHandKeepsSelection(t *testing.T) {
	f := newFakeTransport()
	hand := []card.Card{{Suit: card.Spades, Value: card.Three}, {Suit: card.Spades, Value: card.Four}}
	f.on(protocol.RouteGameState, ok(protocol.GameState{}))
	f.on(protocol.RoutePlayerHand, ok(protocol.PlayerHandData{Cards: hand}))
	c := loggedIn(f, testRoom(), nil, hand)
	require.NoError(t, c.ToggleCardSelection(0))

	c.FetchGameState(context.Background())

	assert.Equal(t, []int{0}, c.Snapshot().Selected)
}

func TestDerivedPredicates(t *testing.T) {
	user := &protocol.User{Name: "alice"}

	t.Run("nil state", func(t *testing.T) {
		assert.False(t, isMyTurn(nil, user))
		assert.Equal(t, -1, myPosition(nil, user))
		assert.False(t, allReady(nil))
	})

	t.Run("not seated", func(t *testing.T) {
		gs := &protocol.GameState{CurrentTurn: 0, Players: []*protocol.Player{seat("bob", 0, true), nil, nil}}
		assert.False(t, isMyTurn(gs, user))
		assert.Equal(t, -1, myPosition(gs, user))
	})

	t.Run("seated and my turn", func(t *testing.T) {
		gs := &protocol.GameState{CurrentTurn: 2, Players: []*protocol.Player{seat("bob", 0, true), nil, seat("alice", 2, false)}}
		assert.True(t, isMyTurn(gs, user))
		assert.Equal(t, 2, myPosition(gs, user))
	})

	t.Run("seated but not my turn", func(t *testing.T) {
		gs := &protocol.GameState{CurrentTurn: 0, Players: []*protocol.Player{seat("bob", 0, true), nil, seat("alice", 2, false)}}
		assert.False(t, isMyTurn(gs, user))
	})

	t.Run("all ready needs three seats", func(t *testing.T) {
		two := &protocol.GameState{Players: []*protocol.Player{seat("a", 0, true), seat("b", 1, true), nil}}
		assert.False(t, allReady(two))

		full := &protocol.GameState{Players: []*protocol.Player{seat("a", 0, true), seat("b", 1, true), seat("c", 2, true)}}
		assert.True(t, allReady(full))

		oneIdle := &protocol.GameState{Players: []*protocol.Player{seat("a", 0, true), seat("b", 1, false), seat("c", 2, true)}}
		assert.False(t, allReady(oneIdle))
	})
}

func TestPollingFetchesWhileInGame(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteGameState, ok(protocol.GameState{}))
	f.on(protocol.RoutePlayerHand, ok(protocol.PlayerHandData{}))
	c := loggedIn(f, testRoom(), nil, nil)

	c.StartPolling()
	defer c.StopPolling()

	require.Eventually(t, func() bool {
		return f.count(protocol.RouteGameState) >= 2
	}, time.Second, 2*time.Millisecond, "poll ticks should fetch state")
}

func TestPollingSkipsOutsideGameView(t *testing.T) {
	f := newFakeTransport()
	c := loggedIn(f, testRoom(), nil, nil)
	c.mu.Lock()
	c.view = ViewRooms
	c.mu.Unlock()

	c.StartPolling()
	defer c.StopPolling()
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, 0, f.total(), "no fetches while not on the game view")
}

func TestStopPollingHalts(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteGameState, ok(protocol.GameState{}))
	f.on(protocol.RoutePlayerHand, ok(protocol.PlayerHandData{}))
	c := loggedIn(f, testRoom(), nil, nil)

	c.StartPolling()
	require.Eventually(t, func() bool {
		return f.count(protocol.RouteGameState) >= 1
	}, time.Second, 2*time.Millisecond)

	c.StopPolling()
	// let any in-flight tick drain before sampling
	time.Sleep(20 * time.Millisecond)
	n := f.count(protocol.RouteGameState)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, f.count(protocol.RouteGameState), "no fetches after StopPolling")
}

func TestStopPollingIdempotent(t *testing.T) {
	c := newTestClient(newFakeTransport())
	c.StopPolling()
	c.StopPolling()
	c.StartPolling()
	c.StopPolling()
	c.StopPolling()
	assert.False(t, c.polling())
}
