package branchbound

import (
	"github.com/witnessdag/witnessd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BBND")
