package client

import (
	"context"

	"github.com/luyingjie/aigames-client/internal/protocol"
)

func (c *Client) AuthMode() AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authMode
}

// ToggleAuthMode flips between login and signup and clears the
// password and any messages.
func (c *Client) ToggleAuthMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authMode == ModeLogin {
		c.authMode = ModeSignup
	} else {
		c.authMode = ModeLogin
	}
	c.authForm.Password = ""
	c.lastError = ""
	c.notice = ""
}

// SubmitAuth logs in or signs up depending on the current mode. Empty
// name or password fails locally with no network traffic. A login
// success sets the user, moves to the room list and refreshes it; a
// signup success clears the password and flips back to login.
func (c *Client) SubmitAuth(ctx context.Context, name, password string, age int) error {
	c.mu.Lock()
	c.authForm = AuthForm{Name: name, Password: password, Age: age}
	mode := c.authMode
	c.mu.Unlock()

	if name == "" || password == "" {
		c.setError("please fill in name and password")
		return ErrMissingCredentials
	}

	route := protocol.RouteLogin
	var payload any = protocol.NewLoginRequest(name, password, age)
	if mode == ModeSignup {
		route = protocol.RouteSignup
		payload = protocol.NewSignupRequest(name, password, age)
	}

	env, err := c.do(ctx, route, payload)
	if err != nil {
		return err
	}
	if !env.OK() {
		return c.business(env, "authentication failed")
	}

	if mode == ModeSignup {
		c.mu.Lock()
		c.authMode = ModeLogin
		c.authForm.Password = ""
		c.mu.Unlock()
		c.setNotice("account created, please log in")
		return nil
	}

	var u protocol.User
	if err := env.Decode(&u); err != nil {
		c.setError("network error: " + err.Error())
		return err
	}
	c.mu.Lock()
	c.user = &u
	c.view = ViewRooms
	c.mu.Unlock()
	c.setNotice(env.Message)
	c.log.Info().Str("user", u.Name).Msg("logged in")

	return c.RefreshRooms(ctx)
}

// Logout is purely local: no server call, polling stopped, everything
// reset to the login view.
func (c *Client) Logout() {
	c.StopPolling()
	c.mu.Lock()
	c.user = nil
	c.room = nil
	c.rooms = nil
	c.game = nil
	c.hand = nil
	c.selected = nil
	c.ready = false
	c.joinTarget = nil
	c.joinPrompt = false
	c.view = ViewLogin
	c.lastError = ""
	c.notice = ""
	c.mu.Unlock()
}
