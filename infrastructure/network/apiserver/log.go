package apiserver

import (
	"github.com/witnessdag/witnessd/infrastructure/logger"
	"github.com/witnessdag/witnessd/util/panics"
)

var log = logger.RegisterSubSystem("HTTP")
var spawn = panics.GoroutineWrapperFunc(log)
