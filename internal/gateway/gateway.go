// Package gateway puts a local HTTP face on the client engine so any
// UI (browser page, curl, a desktop shell) can drive it with plain
// JSON calls.
package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luyingjie/aigames-client/internal/card"
	"github.com/luyingjie/aigames-client/internal/client"
	"github.com/luyingjie/aigames-client/internal/protocol"
)

type Server struct {
	c   *client.Client
	log zerolog.Logger
}

func New(c *client.Client, log zerolog.Logger) *Server {
	return &Server{c: c, log: log}
}

// Mount registers the API on the given gin engine.
func (s *Server) Mount(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	api.GET("/state", s.state)
	api.GET("/deck", s.deck)
	api.POST("/login", s.login)
	api.POST("/signup", s.signup)
	api.POST("/logout", s.logout)
	api.POST("/auth/toggle", s.toggleAuthMode)
	api.GET("/rooms", s.rooms)
	api.POST("/rooms", s.createRoom)
	api.POST("/rooms/:id/join", s.joinRoom)
	api.POST("/join/complete", s.completeJoin)
	api.POST("/join/cancel", s.cancelJoin)
	api.POST("/leave", s.leaveRoom)
	api.POST("/ready", s.toggleReady)
	api.POST("/start", s.startGame)
	api.POST("/call", s.callLandlord)
	api.POST("/select", s.selectCard)
	api.POST("/play", s.playCards)
	api.POST("/pass", s.passTurn)
}

// respond maps engine errors onto HTTP: local validation 400, server
// rejection 422 with the server's message, anything else is the
// transport and becomes 502.
func (s *Server) respond(c *gin.Context, err error) {
	if err == nil {
		c.JSON(http.StatusOK, s.c.Snapshot())
		return
	}
	switch {
	case errors.Is(err, client.ErrMissingCredentials),
		errors.Is(err, client.ErrMissingRoomName),
		errors.Is(err, client.ErrNotInRoom),
		errors.Is(err, client.ErrNoPendingJoin),
		errors.Is(err, client.ErrBadCardIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var be *client.BusinessError
		if errors.As(err, &be) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": be.Message, "code": be.Code})
			return
		}
		s.log.Warn().Err(err).Msg("transport failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "network error, please retry"})
	}
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.c.Snapshot())
}

// deck lists the full 54-card deck with display labels, so a UI can
// render cards it has not seen in a hand yet.
func (s *Server) deck(c *gin.Context) {
	cards := card.Deck()
	out := make([]client.CardView, len(cards))
	for i, cd := range cards {
		out[i] = client.CardView{Card: cd, Label: cd.String(), Color: cd.Color()}
	}
	c.JSON(http.StatusOK, out)
}

type authReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

func (s *Server) login(c *gin.Context) {
	var req authReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	if req.Age == 0 {
		req.Age = 18
	}
	if s.c.AuthMode() != client.ModeLogin {
		s.c.ToggleAuthMode()
	}
	s.respond(c, s.c.SubmitAuth(c.Request.Context(), req.Name, req.Password, req.Age))
}

func (s *Server) signup(c *gin.Context) {
	var req authReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	if req.Age == 0 {
		req.Age = 18
	}
	if s.c.AuthMode() != client.ModeSignup {
		s.c.ToggleAuthMode()
	}
	s.respond(c, s.c.SubmitAuth(c.Request.Context(), req.Name, req.Password, req.Age))
}

func (s *Server) logout(c *gin.Context) {
	s.c.Logout()
	s.respond(c, nil)
}

func (s *Server) toggleAuthMode(c *gin.Context) {
	s.c.ToggleAuthMode()
	s.respond(c, nil)
}

func (s *Server) rooms(c *gin.Context) {
	s.respond(c, s.c.RefreshRooms(c.Request.Context()))
}

type createRoomReq struct {
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Password string `json:"password"`
}

func (s *Server) createRoom(c *gin.Context) {
	var req createRoomReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	s.respond(c, s.c.CreateRoom(c.Request.Context(), req.Name, req.Type, req.Password))
}

func (s *Server) joinRoom(c *gin.Context) {
	id := c.Param("id")
	var target *protocol.Room
	for _, r := range s.c.Snapshot().Rooms {
		if r.ID == id {
			room := r
			target = &room
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown room"})
		return
	}
	s.respond(c, s.c.JoinRoom(c.Request.Context(), *target))
}

type passwordReq struct {
	Password string `json:"password"`
}

func (s *Server) completeJoin(c *gin.Context) {
	var req passwordReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	s.respond(c, s.c.CompleteJoin(c.Request.Context(), req.Password))
}

func (s *Server) cancelJoin(c *gin.Context) {
	s.c.CancelJoin()
	s.respond(c, nil)
}

func (s *Server) leaveRoom(c *gin.Context) {
	s.respond(c, s.c.LeaveRoom(c.Request.Context()))
}

func (s *Server) toggleReady(c *gin.Context) {
	s.respond(c, s.c.ToggleReady(c.Request.Context()))
}

func (s *Server) startGame(c *gin.Context) {
	s.respond(c, s.c.StartGame(c.Request.Context()))
}

type callReq struct {
	Call bool `json:"call"`
}

func (s *Server) callLandlord(c *gin.Context) {
	var req callReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	s.respond(c, s.c.CallLandlord(c.Request.Context(), req.Call))
}

type selectReq struct {
	Index int `json:"index"`
}

func (s *Server) selectCard(c *gin.Context) {
	var req selectReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	s.respond(c, s.c.ToggleCardSelection(req.Index))
}

func (s *Server) playCards(c *gin.Context) {
	s.respond(c, s.c.PlayCards(c.Request.Context()))
}

func (s *Server) passTurn(c *gin.Context) {
	s.respond(c, s.c.PassTurn(c.Request.Context()))
}
