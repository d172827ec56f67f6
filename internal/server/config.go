package server

import (
	"github.com/raysh454/georisk/internal/app"
	"github.com/raysh454/georisk/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address; empty uses AppConfig.Server.Addr.
	ListenAddr string

	AppConfig *app.Config
	Logger    logging.Logger
}
