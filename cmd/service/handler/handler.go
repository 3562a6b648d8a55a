package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/askbase-ai/askbase-ai/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
