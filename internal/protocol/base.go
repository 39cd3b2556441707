// Package protocol mirrors the aigames server wire contract: request
// payloads, the {code,message,data} response envelope, and the status
// codes the server answers with.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Routes the server registers.
const (
	RouteLogin        = "user.Login"
	RouteSignup       = "user.Signup"
	RouteRoomList     = "room.GetRoomList"
	RouteCreateRoom   = "room.CreateRoom"
	RouteJoinRoom     = "room.JoinRoom"
	RouteLeaveRoom    = "room.LeaveRoom"
	RouteSetReady     = "room.SetReady"
	RouteStartGame    = "room.StartGame"
	RouteGameState    = "game.GetGameState"
	RoutePlayerHand   = "game.GetPlayerHand"
	RouteCallLandlord = "game.CallLandlord"
	RoutePlayCards    = "game.PlayCards"
	RoutePassTurn     = "game.PassTurn"
)

const (
	StatusOK = 200

	StatusBadRequest   = 400
	StatusUnauthorized = 401
	StatusNotFound     = 404

	StatusUserNotFound      = 1001
	StatusUserExists        = 1002
	StatusPasswordIncorrect = 1003

	StatusGameNotFound    = 4001
	StatusGameNotStarted  = 4002
	StatusGameEnded       = 4003
	StatusRoomFull        = 4004
	StatusRoomNotFound    = 4005
	StatusPlayerNotInRoom = 4006
	StatusNotPlayerTurn   = 4007
	StatusInvalidMove     = 4008
)

// BaseRequest carries the tracing fields the server expects on every
// request.
type BaseRequest struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	ClientID  string    `json:"client_id,omitempty"`
}

func NewBaseRequest() BaseRequest {
	return BaseRequest{
		RequestID: uuid.New().String(),
		Timestamp: time.Now(),
	}
}

type PageRequest struct {
	BaseRequest
	Page int `json:"page"`
	Size int `json:"size"`
}

// Envelope is the server's uniform response shape. Data stays raw until
// the caller knows which payload the route carries.
type Envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

func (e *Envelope) OK() bool {
	return e.Code == StatusOK
}

// Decode unmarshals the data payload into v. A missing payload is left
// as-is, matching the server's omitempty behavior.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}
