package grpcserver

import (
	"github.com/witnessdag/witnessd/infrastructure/logger"
	"github.com/witnessdag/witnessd/util/panics"
)

var log = logger.RegisterSubSystem("GRPC")
var spawn = panics.GoroutineWrapperFunc(log)
