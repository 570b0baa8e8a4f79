package catchupmanager

import (
	"github.com/witnessdag/witnessd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CTUP")
