package consensus

import (
	"github.com/witnessdag/witnessd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CNSS")
