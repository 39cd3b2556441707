package client

import (
	"context"

	"github.com/luyingjie/aigames-client/internal/protocol"
)

const (
	roomListPage = 1
	roomListSize = 50
	roomListAll  = 0
)

// RefreshRooms replaces the local room list with the server's. On any
// failure the previous list is left untouched.
func (c *Client) RefreshRooms(ctx context.Context) error {
	env, err := c.do(ctx, protocol.RouteRoomList, protocol.NewGetRoomListRequest(roomListPage, roomListSize, roomListAll))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not list rooms")
	}
	var data protocol.RoomListData
	if err := env.Decode(&data); err != nil {
		c.setError("network error: " + err.Error())
		return err
	}
	c.mu.Lock()
	c.rooms = data.Rooms
	c.mu.Unlock()
	return nil
}

// CreateRoom creates and enters a room, then starts the sync loop.
func (c *Client) CreateRoom(ctx context.Context, name string, roomType int, password string) error {
	c.mu.Lock()
	c.roomForm = RoomForm{Name: name, Type: roomType, Password: password}
	c.mu.Unlock()

	if name == "" {
		c.setError("please enter a room name")
		return ErrMissingRoomName
	}

	env, err := c.do(ctx, protocol.RouteCreateRoom, protocol.NewCreateRoomRequest(name, roomType, password))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not create room")
	}
	var room protocol.Room
	if err := env.Decode(&room); err != nil {
		c.setError("network error: " + err.Error())
		return err
	}

	c.mu.Lock()
	c.room = &room
	c.view = ViewGame
	c.roomForm = RoomForm{}
	c.lastError = ""
	c.mu.Unlock()
	c.log.Info().Str("room", room.ID).Msg("room created")

	c.FetchGameState(ctx)
	c.StartPolling()
	return nil
}

// JoinRoom enters a room from the list. Password-protected rooms open
// a password prompt instead of joining right away.
func (c *Client) JoinRoom(ctx context.Context, room protocol.Room) error {
	c.mu.Lock()
	target := room
	c.joinTarget = &target
	c.joinPrompt = room.HasPassword
	c.mu.Unlock()

	if room.HasPassword {
		return nil
	}
	return c.CompleteJoin(ctx, "")
}

// CompleteJoin performs the join against the selected room, with the
// password supplied through the prompt when one was required.
func (c *Client) CompleteJoin(ctx context.Context, password string) error {
	c.mu.Lock()
	target := c.joinTarget
	c.mu.Unlock()
	if target == nil {
		return ErrNoPendingJoin
	}

	env, err := c.do(ctx, protocol.RouteJoinRoom, protocol.NewJoinRoomRequest(target.ID, password))
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "could not join room")
	}
	var room protocol.Room
	if err := env.Decode(&room); err != nil {
		c.setError("network error: " + err.Error())
		return err
	}

	c.mu.Lock()
	c.room = &room
	c.view = ViewGame
	c.joinTarget = nil
	c.joinPrompt = false
	c.lastError = ""
	c.mu.Unlock()
	c.log.Info().Str("room", room.ID).Msg("joined room")

	c.FetchGameState(ctx)
	c.StartPolling()
	return nil
}

// CancelJoin closes the password prompt without joining.
func (c *Client) CancelJoin() {
	c.mu.Lock()
	c.joinTarget = nil
	c.joinPrompt = false
	c.mu.Unlock()
}

// LeaveRoom notifies the server and tears local room state down. The
// business result of the notification is ignored, but a transport
// failure surfaces without any cleanup: the server may still consider
// us seated.
func (c *Client) LeaveRoom(ctx context.Context) error {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == nil {
		return ErrNotInRoom
	}

	if _, err := c.do(ctx, protocol.RouteLeaveRoom, protocol.NewLeaveRoomRequest(room.ID)); err != nil {
		return err
	}

	c.StopPolling()
	c.mu.Lock()
	c.room = nil
	c.game = nil
	c.hand = nil
	c.selected = nil
	c.ready = false
	c.view = ViewRooms
	c.mu.Unlock()
	c.log.Info().Str("room", room.ID).Msg("left room")

	return c.RefreshRooms(ctx)
}
