package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luyingjie/aigames-client/internal/protocol"
)

func TestRefreshRoomsReplacesWholesale(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteRoomList, ok(protocol.RoomListData{Rooms: []protocol.Room{{ID: "r2"}}}))
	c := newTestClient(f)
	c.mu.Lock()
	c.rooms = []protocol.Room{{ID: "r1"}, {ID: "old"}}
	c.mu.Unlock()

	require.NoError(t, c.RefreshRooms(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap.Rooms, 1)
	assert.Equal(t, "r2", snap.Rooms[0].ID)

	req, isReq := f.lastPayload(protocol.RouteRoomList).(protocol.GetRoomListRequest)
	require.True(t, isReq)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 50, req.Size)
	assert.Equal(t, 0, req.Type)
}

func TestRefreshRoomsFailureKeepsPriorList(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteRoomList, fail(protocol.StatusBadRequest, "nope"))
	c := newTestClient(f)
	c.mu.Lock()
	c.rooms = []protocol.Room{{ID: "r1"}}
	c.mu.Unlock()

	require.Error(t, c.RefreshRooms(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap.Rooms, 1)
	assert.Equal(t, "r1", snap.Rooms[0].ID)
}

func TestCreateRoomRequiresName(t *testing.T) {
	f := newFakeTransport()
	c := newTestClient(f)

	err := c.CreateRoom(context.Background(), "", 0, "")
	require.ErrorIs(t, err, ErrMissingRoomName)
	assert.Equal(t, 0, f.total())
}

func TestCreateRoomSuccess(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteCreateRoom, ok(protocol.Room{ID: "r1", Name: "T1"}))
	c := newTestClient(f)
	defer c.StopPolling()

	err := c.CreateRoom(context.Background(), "T1", 0, "")
	require.NoError(t, err)

	assert.Equal(t, ViewGame, c.CurrentView())
	require.NotNil(t, c.CurrentRoom())
	assert.Equal(t, "r1", c.CurrentRoom().ID)
	assert.Equal(t, RoomForm{}, c.Snapshot().RoomForm, "form resets on success")
	assert.True(t, c.polling(), "polling starts on entering the room")
	assert.GreaterOrEqual(t, f.count(protocol.RouteGameState), 1, "an immediate state fetch")
}

func TestJoinRoomPasswordGate(t *testing.T) {
	f := newFakeTransport()
	c := newTestClient(f)

	room := protocol.Room{ID: "r9", Name: "locked", HasPassword: true}
	require.NoError(t, c.JoinRoom(context.Background(), room))

	snap := c.Snapshot()
	assert.True(t, snap.JoinPrompt, "password prompt opens")
	require.NotNil(t, snap.JoinRoom)
	assert.Equal(t, "r9", snap.JoinRoom.ID)
	assert.Equal(t, 0, f.total(), "no network call until the password is submitted")
	assert.Nil(t, c.CurrentRoom())
}

func TestJoinRoomWithoutPassword(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteJoinRoom, ok(protocol.Room{ID: "r2", Name: "open"}))
	c := newTestClient(f)
	defer c.StopPolling()

	require.NoError(t, c.JoinRoom(context.Background(), protocol.Room{ID: "r2", Name: "open"}))

	assert.Equal(t, ViewGame, c.CurrentView())
	require.NotNil(t, c.CurrentRoom())
	assert.Equal(t, "r2", c.CurrentRoom().ID)
	assert.True(t, c.polling())
	assert.False(t, c.Snapshot().JoinPrompt)
}

func TestCompleteJoinSendsPassword(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteJoinRoom, ok(protocol.Room{ID: "r9"}))
	c := newTestClient(f)
	defer c.StopPolling()

	require.NoError(t, c.JoinRoom(context.Background(), protocol.Room{ID: "r9", HasPassword: true}))
	require.NoError(t, c.CompleteJoin(context.Background(), "pw"))

	req, isReq := f.lastPayload(protocol.RouteJoinRoom).(protocol.JoinRoomRequest)
	require.True(t, isReq)
	assert.Equal(t, "r9", req.RoomID)
	assert.Equal(t, "pw", req.Password)
	assert.False(t, c.Snapshot().JoinPrompt, "prompt closes on success")
}

func TestCompleteJoinWithoutTarget(t *testing.T) {
	f := newFakeTransport()
	c := newTestClient(f)
	require.ErrorIs(t, c.CompleteJoin(context.Background(), "pw"), ErrNoPendingJoin)
	assert.Equal(t, 0, f.total())
}

func TestCancelJoinClosesPrompt(t *testing.T) {
	f := newFakeTransport()
	c := newTestClient(f)
	require.NoError(t, c.JoinRoom(context.Background(), protocol.Room{ID: "r9", HasPassword: true}))

	c.CancelJoin()

	snap := c.Snapshot()
	assert.False(t, snap.JoinPrompt)
	assert.Nil(t, snap.JoinRoom)
}

func TestLeaveRoomCleansUp(t *testing.T) {
	f := newFakeTransport()
	f.on(protocol.RouteLeaveRoom, fail(protocol.StatusPlayerNotInRoom, "玩家不在房间内"))
	f.on(protocol.RouteRoomList, ok(protocol.RoomListData{}))
	c := loggedIn(f, testRoom(), &protocol.GameState{}, nil)
	c.StartPolling()

	// business failure of the notification is ignored; cleanup happens
	require.NoError(t, c.LeaveRoom(context.Background()))

	assert.Equal(t, ViewRooms, c.CurrentView())
	assert.Nil(t, c.CurrentRoom())
	snap := c.Snapshot()
	assert.Nil(t, snap.Game)
	assert.Empty(t, snap.Hand)
	assert.False(t, c.polling(), "polling stops on leave")
	assert.Equal(t, 1, f.count(protocol.RouteRoomList), "room list refreshes after leaving")
}

func TestLeaveRoomTransportFailureKeepsState(t *testing.T) {
	f := newFakeTransport()
	f.requestErr = errNetwork
	c := loggedIn(f, testRoom(), &protocol.GameState{}, nil)
	c.StartPolling()
	defer c.StopPolling()

	require.Error(t, c.LeaveRoom(context.Background()))

	assert.NotNil(t, c.CurrentRoom(), "leave is not assumed on network error")
	assert.Equal(t, ViewGame, c.CurrentView())
	assert.True(t, c.polling())
}

func TestLeaveRoomWithoutRoom(t *testing.T) {
	f := newFakeTransport()
	c := newTestClient(f)
	require.ErrorIs(t, c.LeaveRoom(context.Background()), ErrNotInRoom)
	assert.Equal(t, 0, f.total())
}
