package config

import (
	"time"
)

// Config holds the application configuration.
type Config struct {
	MongoURI string
	Database string
	JSONDir  string
	DryRun   bool
	Timeout  time.Duration
}
