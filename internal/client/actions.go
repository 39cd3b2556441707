package client

import (
	"context"

	"github.com/luyingjie/aigames-client/internal/card"
	"github.com/luyingjie/aigames-client/internal/protocol"
)

// Every action follows the same shape: issue the request, and on a 200
// refetch the authoritative state. Nothing is applied optimistically;
// turn ownership and card legality stay entirely server-side.

// ToggleReady asks the server to set the opposite of the current local
// readiness. The local flag flips on success; the refetch that follows
// overwrites it with the server's value either way.
func (c *Client) ToggleReady(ctx context.Context) error {
	c.mu.Lock()
	room := c.room
	ready := c.ready
	c.mu.Unlock()
	if room == nil {
		return ErrNotInRoom
	}

	env, err := c.do(ctx, protocol.RouteSetReady, protocol.NewSetReadyRequest(room.ID, !ready))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not set ready state")
	}

	c.mu.Lock()
	c.ready = !ready
	c.mu.Unlock()
	c.FetchGameState(ctx)
	return nil
}

// StartGame requests a game start. Whether this player may start one
// is the server's call.
func (c *Client) StartGame(ctx context.Context) error {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == nil {
		return ErrNotInRoom
	}

	env, err := c.do(ctx, protocol.RouteStartGame, protocol.NewStartGameRequest(room.ID))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not start game")
	}
	c.FetchGameState(ctx)
	return nil
}

// CallLandlord sends the bidding decision.
func (c *Client) CallLandlord(ctx context.Context, call bool) error {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == nil {
		return ErrNotInRoom
	}

	env, err := c.do(ctx, protocol.RouteCallLandlord, protocol.NewCallLandlordRequest(room.ID, call))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not call landlord")
	}
	c.FetchGameState(ctx)
	return nil
}

// ToggleCardSelection flips membership of a hand index in the
// selection. Purely local; applying it twice restores the prior state.
func (c *Client) ToggleCardSelection(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.hand) {
		return ErrBadCardIndex
	}
	for pos, i := range c.selected {
		if i == index {
			c.selected = append(c.selected[:pos], c.selected[pos+1:]...)
			return nil
		}
	}
	c.selected = append(c.selected, index)
	return nil
}

// PlayCards sends the selected cards. The cards are snapshotted from
// the hand before any refetch can shift indices; on success the
// selection is cleared.
func (c *Client) PlayCards(ctx context.Context) error {
	c.mu.Lock()
	room := c.room
	if room == nil {
		c.mu.Unlock()
		return ErrNotInRoom
	}
	if len(c.selected) == 0 {
		c.mu.Unlock()
		return nil
	}
	cards := make([]card.Card, 0, len(c.selected))
	for _, i := range c.selected {
		if i >= 0 && i < len(c.hand) {
			cards = append(cards, c.hand[i])
		}
	}
	c.mu.Unlock()

	env, err := c.do(ctx, protocol.RoutePlayCards, protocol.NewPlayCardsRequest(room.ID, cards))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not play cards")
	}

	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
	c.FetchGameState(ctx)
	return nil
}

// PassTurn sends a pass for the current trick.
func (c *Client) PassTurn(ctx context.Context) error {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == nil {
		return ErrNotInRoom
	}

	env, err := c.do(ctx, protocol.RoutePassTurn, protocol.NewPassTurnRequest(room.ID))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not pass")
	}
	c.FetchGameState(ctx)
	return nil
}
