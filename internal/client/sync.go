package client

import (
	"context"
	"time"

	"github.com/luyingjie/aigames-client/internal/card"
	"github.com/luyingjie/aigames-client/internal/protocol"
)

// FetchGameState pulls the authoritative game state, then the local
// hand, then refreshes the readiness mirror. Failures are logged, not
// surfaced, and nothing already applied is rolled back: a dead hand
// fetch after a live state fetch leaves the new state in place.
func (c *Client) FetchGameState(ctx context.Context) {
	c.mu.Lock()
	room := c.room
	user := c.user
	c.mu.Unlock()
	if room == nil {
		return
	}

	if err := c.tr.Connect(ctx); err != nil {
		c.log.Debug().Err(err).Msg("sync: connect failed")
		return
	}

	env, err := c.tr.Request(ctx, protocol.RouteGameState, protocol.NewGetGameStateRequest(room.ID))
	if err != nil {
		c.log.Debug().Err(err).Msg("sync: game state fetch failed")
		return
	}
	if !env.OK() {
		c.log.Debug().Int("code", env.Code).Str("msg", env.Message).Msg("sync: game state rejected")
		return
	}
	var gs protocol.GameState
	if err := env.Decode(&gs); err != nil {
		c.log.Debug().Err(err).Msg("sync: undecodable game state")
		return
	}
	c.mu.Lock()
	c.game = &gs
	c.mu.Unlock()

	if env, err := c.tr.Request(ctx, protocol.RoutePlayerHand, protocol.NewGetPlayerHandRequest(room.ID)); err != nil {
		c.log.Debug().Err(err).Msg("sync: hand fetch failed")
	} else if !env.OK() {
		c.log.Debug().Int("code", env.Code).Str("msg", env.Message).Msg("sync: hand rejected")
	} else {
		var data protocol.PlayerHandData
		if err := env.Decode(&data); err != nil {
			c.log.Debug().Err(err).Msg("sync: undecodable hand")
		} else {
			c.mu.Lock()
			if !handEqual(c.hand, data.Cards) {
				c.selected = nil
			}
			c.hand = data.Cards
			c.mu.Unlock()
		}
	}

	if user != nil {
		c.mu.Lock()
		if p := findPlayer(c.game, user.Name); p != nil {
			c.ready = p.IsReady
		}
		c.mu.Unlock()
	}
}

// StartPolling refreshes game state every poll interval while the game
// view is active and a room is set. Starting again replaces any
// running loop.
func (c *Client) StartPolling() {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	if c.pollCancel != nil {
		c.pollCancel()
	}
	c.pollCancel = cancel
	c.mu.Unlock()
	go c.pollLoop(ctx)
}

// StopPolling cancels the loop. Safe to call when not running.
func (c *Client) StopPolling() {
	c.mu.Lock()
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	c.mu.Unlock()
}

func (c *Client) pollLoop(ctx context.Context) {
	t := time.NewTicker(c.pollEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.mu.Lock()
			active := c.view == ViewGame && c.room != nil
			c.mu.Unlock()
			if active {
				c.FetchGameState(ctx)
			}
		}
	}
}

// IsMyTurn reports whether the local player is seated and it is their
// turn.
func (c *Client) IsMyTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return isMyTurn(c.game, c.user)
}

// MyPosition returns the local player's seat, or -1 when not seated.
func (c *Client) MyPosition() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return myPosition(c.game, c.user)
}

// AllReady is true only when all three seats are filled and ready.
func (c *Client) AllReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return allReady(c.game)
}

func findPlayer(gs *protocol.GameState, name string) *protocol.Player {
	if gs == nil {
		return nil
	}
	for _, p := range gs.Players {
		if p != nil && p.Username == name {
			return p
		}
	}
	return nil
}

func isMyTurn(gs *protocol.GameState, u *protocol.User) bool {
	if gs == nil || u == nil {
		return false
	}
	p := findPlayer(gs, u.Name)
	return p != nil && p.Position == gs.CurrentTurn
}

func myPosition(gs *protocol.GameState, u *protocol.User) int {
	if gs == nil || u == nil {
		return -1
	}
	if p := findPlayer(gs, u.Name); p != nil {
		return p.Position
	}
	return -1
}

func allReady(gs *protocol.GameState) bool {
	if gs == nil {
		return false
	}
	seated := 0
	for _, p := range gs.Players {
		if p == nil {
			continue
		}
		if !p.IsReady {
			return false
		}
		seated++
	}
	return seated == 3
}

func handEqual(a, b []card.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
