// Package client holds the session and synchronization engine: local
// view state, the auth and room controllers, the polling game-state
// sync, and the user-action dispatcher. The server owns every rule;
// this side only mirrors state and sequences requests.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/luyingjie/aigames-client/internal/card"
	"github.com/luyingjie/aigames-client/internal/protocol"
)

// Caller is the transport seam. Satisfied by nanoclient.Session.
type Caller interface {
	Connect(ctx context.Context) error
	Request(ctx context.Context, route string, payload any) (*protocol.Envelope, error)
}

type View string

const (
	ViewLogin View = "login"
	ViewRooms View = "rooms"
	ViewGame  View = "game"
)

type AuthMode string

const (
	ModeLogin  AuthMode = "login"
	ModeSignup AuthMode = "signup"
)

var (
	ErrMissingCredentials = errors.New("name and password are required")
	ErrMissingRoomName    = errors.New("room name is required")
	ErrNotInRoom          = errors.New("not in a room")
	ErrNoPendingJoin      = errors.New("no room selected to join")
	ErrBadCardIndex       = errors.New("card index out of range")
)

// BusinessError carries a non-200 envelope back to the caller. The
// request itself went through; the server rejected it.
type BusinessError struct {
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("server code %d: %s", e.Code, e.Message)
}

type AuthForm struct {
	Name     string `json:"name"`
	Password string `json:"-"`
	Age      int    `json:"age"`
}

type RoomForm struct {
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Password string `json:"-"`
}

// Client is the whole of the local view state plus the controllers
// that mutate it. One mutex guards everything; the polling goroutine
// and user-triggered calls both replace state wholesale under it, so
// interleaving can only cause staleness, never corruption.
type Client struct {
	log       zerolog.Logger
	tr        Caller
	pollEvery time.Duration

	mu         sync.Mutex
	view       View
	authMode   AuthMode
	authForm   AuthForm
	roomForm   RoomForm
	user       *protocol.User
	rooms      []protocol.Room
	room       *protocol.Room
	game       *protocol.GameState
	hand       []card.Card
	selected   []int
	ready      bool
	joinTarget *protocol.Room
	joinPrompt bool
	lastError  string
	notice     string
	pollCancel context.CancelFunc
}

func New(tr Caller, pollEvery time.Duration, log zerolog.Logger) *Client {
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	return &Client{
		log:       log,
		tr:        tr,
		pollEvery: pollEvery,
		view:      ViewLogin,
		authMode:  ModeLogin,
		authForm:  AuthForm{Age: 18},
	}
}

// do runs the shared request shape: ensure the session is up, issue
// the call, surface transport failures as a network-error message.
func (c *Client) do(ctx context.Context, route string, payload any) (*protocol.Envelope, error) {
	if err := c.tr.Connect(ctx); err != nil {
		c.setError("network error: " + err.Error())
		return nil, err
	}
	env, err := c.tr.Request(ctx, route, payload)
	if err != nil {
		c.setError("network error: " + err.Error())
		return nil, err
	}
	return env, nil
}

// business records a non-200 envelope as the visible error and returns
// it as a BusinessError. fallback is used when the server sent no
// message.
func (c *Client) business(env *protocol.Envelope, fallback string) error {
	msg := env.Message
	if msg == "" {
		msg = fallback
	}
	c.setError(msg)
	return &BusinessError{Code: env.Code, Message: msg}
}

func (c *Client) setError(msg string) {
	c.mu.Lock()
	c.lastError = msg
	c.notice = ""
	c.mu.Unlock()
}

func (c *Client) setNotice(msg string) {
	c.mu.Lock()
	c.notice = msg
	c.lastError = ""
	c.mu.Unlock()
}

func (c *Client) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Client) CurrentRoom() *protocol.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) User() *protocol.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// CardView is a hand card decorated for display.
type CardView struct {
	card.Card
	Label    string `json:"label"`
	Color    string `json:"color"`
	Selected bool   `json:"selected"`
}

// Snapshot is the full view state in one consistent read, shaped for
// whatever UI sits in front of the engine.
type Snapshot struct {
	View       View                `json:"view"`
	AuthMode   AuthMode            `json:"auth_mode"`
	AuthForm   AuthForm            `json:"auth_form"`
	RoomForm   RoomForm            `json:"room_form"`
	User       *protocol.User      `json:"user,omitempty"`
	Rooms      []protocol.Room     `json:"rooms"`
	Room       *protocol.Room      `json:"room,omitempty"`
	Game       *protocol.GameState `json:"game,omitempty"`
	Hand       []CardView          `json:"hand"`
	Selected   []int               `json:"selected"`
	Ready      bool                `json:"ready"`
	MyTurn     bool                `json:"my_turn"`
	MyPosition int                 `json:"my_position"`
	AllReady   bool                `json:"all_ready"`
	JoinPrompt bool                `json:"join_prompt"`
	JoinRoom   *protocol.Room      `json:"join_room,omitempty"`
	Error      string              `json:"error,omitempty"`
	Notice     string              `json:"notice,omitempty"`
}

func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	hand := make([]CardView, len(c.hand))
	sel := make(map[int]bool, len(c.selected))
	for _, i := range c.selected {
		sel[i] = true
	}
	for i, cd := range c.hand {
		hand[i] = CardView{Card: cd, Label: cd.String(), Color: cd.Color(), Selected: sel[i]}
	}

	return Snapshot{
		View:       c.view,
		AuthMode:   c.authMode,
		AuthForm:   c.authForm,
		RoomForm:   c.roomForm,
		User:       c.user,
		Rooms:      append([]protocol.Room(nil), c.rooms...),
		Room:       c.room,
		Game:       c.game,
		Hand:       hand,
		Selected:   append([]int(nil), c.selected...),
		Ready:      c.ready,
		MyTurn:     isMyTurn(c.game, c.user),
		MyPosition: myPosition(c.game, c.user),
		AllReady:   allReady(c.game),
		JoinPrompt: c.joinPrompt,
		JoinRoom:   c.joinTarget,
		Error:      c.lastError,
		Notice:     c.notice,
	}
}
