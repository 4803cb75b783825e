package kv

import "github.com/rs/zerolog"

var kvLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	kvLogger = l
}
