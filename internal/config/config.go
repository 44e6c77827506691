// Package config reads server settings from the environment. A .env file
// is loaded first when present so local runs need no exported variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DatabaseURL string

	TurnTimeout     time.Duration
	BotDelay        time.Duration
	FlushInterval   time.Duration
	BotReplaceAfter int

	StuckIdle     time.Duration
	SweepInterval time.Duration
}

func FromEnv() Config {
	_ = godotenv.Load()

	c := Config{}
	c.Addr = getenv("ADDR", ":8080")
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.TurnTimeout = getdur("TURN_TIMEOUT", 30*time.Second)
	c.BotDelay = getdur("BOT_DELAY", 800*time.Millisecond)
	c.FlushInterval = getdur("FLUSH_INTERVAL", 2*time.Second)
	c.BotReplaceAfter = getint("BOT_REPLACE_AFTER", 3)
	c.StuckIdle = getdur("STUCK_IDLE", time.Hour)
	c.SweepInterval = getdur("SWEEP_INTERVAL", 5*time.Minute)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
