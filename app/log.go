package app

import (
	"github.com/witnessdag/witnessd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("WTND")
