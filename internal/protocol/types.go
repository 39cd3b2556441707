package protocol

import (
	"github.com/luyingjie/aigames-client/internal/card"
)

// User is the login payload the server answers with.
type User struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Room mirrors the server's RoomData.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Type        int    `json:"type"`
	TypeName    string `json:"type_name"`
	Status      int    `json:"status"`
	StatusName  string `json:"status_name"`
	MaxPlayers  int    `json:"max_players"`
	PlayerCount int    `json:"player_count"`
	HasPassword bool   `json:"has_password"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type RoomListData struct {
	Rooms []Room `json:"rooms"`
}

// Player is one seat in the game state. The server omits other
// players' cards, so Cards is only populated for the local player.
type Player struct {
	Username     string      `json:"username"`
	Position     int         `json:"position"`
	Role         int         `json:"role"`
	RoleName     string      `json:"role_name"`
	CardCount    int         `json:"card_count"`
	IsReady      bool        `json:"is_ready"`
	IsOnline     bool        `json:"is_online"`
	Score        int         `json:"score"`
	CallLandlord bool        `json:"call_landlord"`
	Cards        []card.Card `json:"cards,omitempty"`
}

// GameState is the authoritative snapshot fetched from the server.
// Players always has three slots; empty seats are nil.
type GameState struct {
	GameID        string      `json:"game_id"`
	Status        int         `json:"status"`
	StatusName    string      `json:"status_name"`
	CurrentTurn   int         `json:"current_turn"`
	LastPlayCards []card.Card `json:"last_play_cards"`
	LastPlayer    int         `json:"last_player"`
	Players       []*Player   `json:"players"`
	LandlordCards []card.Card `json:"landlord_cards,omitempty"`
	CreatedAt     string      `json:"created_at"`
	StartedAt     *string     `json:"started_at"`
	FinishedAt    *string     `json:"finished_at"`
	Winner        int         `json:"winner"`
}

type PlayerHandData struct {
	Cards []card.Card `json:"cards"`
}

type LoginRequest struct {
	BaseRequest
	Name     string `json:"name"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type SignupRequest struct {
	BaseRequest
	Name     string `json:"name"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type GetRoomListRequest struct {
	PageRequest
	Type int `json:"type"`
}

type CreateRoomRequest struct {
	BaseRequest
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Password string `json:"password,omitempty"`
}

type JoinRoomRequest struct {
	BaseRequest
	RoomID   string `json:"room_id"`
	Password string `json:"password,omitempty"`
}

type LeaveRoomRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
}

type SetReadyRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
	Ready  bool   `json:"ready"`
}

type StartGameRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
}

type GetGameStateRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
}

type GetPlayerHandRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
}

type CallLandlordRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
	Call   bool   `json:"call"`
}

type PlayCardsRequest struct {
	BaseRequest
	RoomID string      `json:"room_id"`
	Cards  []card.Card `json:"cards"`
}

type PassTurnRequest struct {
	BaseRequest
	RoomID string `json:"room_id"`
}

func NewLoginRequest(name, password string, age int) LoginRequest {
	return LoginRequest{BaseRequest: NewBaseRequest(), Name: name, Password: password, Age: age}
}

func NewSignupRequest(name, password string, age int) SignupRequest {
	return SignupRequest{BaseRequest: NewBaseRequest(), Name: name, Password: password, Age: age}
}

func NewGetRoomListRequest(page, size, roomType int) GetRoomListRequest {
	return GetRoomListRequest{
		PageRequest: PageRequest{BaseRequest: NewBaseRequest(), Page: page, Size: size},
		Type:        roomType,
	}
}

func NewCreateRoomRequest(name string, roomType int, password string) CreateRoomRequest {
	return CreateRoomRequest{BaseRequest: NewBaseRequest(), Name: name, Type: roomType, Password: password}
}

func NewJoinRoomRequest(roomID, password string) JoinRoomRequest {
	return JoinRoomRequest{BaseRequest: NewBaseRequest(), RoomID: roomID, Password: password}
}

func NewLeaveRoomRequest(roomID string) LeaveRoomRequest {
	return LeaveRoomRequest{BaseRequest: NewBaseRequest(), RoomID: roomID}
}

func NewSetReadyRequest(roomID string, ready bool) SetReadyRequest {
	return SetReadyRequest{BaseRequest: NewBaseRequest(), RoomID: roomID, Ready: ready}
}

func NewStartGameRequest(roomID string) StartGameRequest {
	return StartGameRequest{BaseRequest: NewBaseRequest(), RoomID: roomID}
}

func NewGetGameStateRequest(roomID string) GetGameStateRequest {
	return GetGameStateRequest{BaseRequest: NewBaseRequest(), RoomID: roomID}
}

func NewGetPlayerHandRequest(roomID string) GetPlayerHandRequest {
	return GetPlayerHandRequest{BaseRequest: NewBaseRequest(), RoomID: roomID}
}

func NewCallLandlordRequest(roomID string, call bool) CallLandlordRequest {
	return CallLandlordRequest{BaseRequest: NewBaseRequest(), RoomID: roomID, Call: call}
}

func NewPlayCardsRequest(roomID string, cards []card.Card) PlayCardsRequest {
	return PlayCardsRequest{BaseRequest: NewBaseRequest(), RoomID: roomID, Cards: cards}
}

func NewPassTurnRequest(roomID string) PassTurnRequest {
	return PassTurnRequest{BaseRequest: NewBaseRequest(), RoomID: roomID}
}
