package main

import "time"

type Config struct {
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES"`

	TokenSecret   string        `env:"TOKEN_SECRET,required=true"`
	TokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=15m"`

	EncryptionKey     string `env:"CHAT_ENCRYPTION_KEY"`
	AllowEphemeralKey bool   `env:"ALLOW_EPHEMERAL_KEY,default=false"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	SweepInterval   time.Duration `env:"LIVENESS_SWEEP_INTERVAL,default=30s"`
	DeadAfter       time.Duration `env:"LIVENESS_DEAD_AFTER,default=60s"`
	TypingIdleAfter time.Duration `env:"TYPING_IDLE_AFTER,default=3s"`

	BroadcastMode string `env:"BROADCAST_MODE,default=scoped"`
}
