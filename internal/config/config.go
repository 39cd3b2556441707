package config

import (
	"os"
	"time"
)

type Config struct {
	ServerHost   string
	ServerPort   string
	ServerPath   string
	GatewayPort  string
	PollInterval time.Duration
	ClientType   string
	Version      string
}

func FromEnv() Config {
	c := Config{}
	c.ServerHost = getenv("AIGAMES_HOST", "127.0.0.1")
	c.ServerPort = getenv("AIGAMES_PORT", "3250")
	c.ServerPath = getenv("AIGAMES_WS_PATH", "/nano")
	c.GatewayPort = getenv("PORT", "8080")
	c.PollInterval = getdur("POLL_INTERVAL", 2*time.Second)
	c.ClientType = getenv("CLIENT_TYPE", "go-websocket")
	c.Version = getenv("CLIENT_VERSION", "0.0.1")
	return c
}

// ServerURL is the websocket endpoint of the game server.
func (c Config) ServerURL() string {
	return "ws://" + c.ServerHost + ":" + c.ServerPort + c.ServerPath
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
