package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	DebugPort            *int          `env:"DEBUG_PORT"`
}
