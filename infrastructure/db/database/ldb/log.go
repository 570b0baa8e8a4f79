package ldb

import "github.com/witnessdag/witnessd/infrastructure/logger"

var log = logger.RegisterSubSystem("LDB")
