package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/askbase-ai/askbase-ai/app/logic/v1"
	"github.com/askbase-ai/askbase-ai/app/response"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

type IndexItemsRequest struct {
	ItemUUIDs []string `json:"item_uuids" form:"item_uuids" binding:"required"`
}

func (s *HttpSrv) IndexKnowledgeBase(c *gin.Context) {
	kbUUID, _ := c.Params.Get("kbid")
	ok, err := v1.NewIndexLogic(c, s.Core).IndexKnowledgeBase(kbUUID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"accepted": ok})
}

func (s *HttpSrv) IndexKnowledgeBaseItems(c *gin.Context) {
	var (
		err error
		req IndexItemsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	ok, err := v1.NewIndexLogic(c, s.Core).IndexItems(req.ItemUUIDs)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"accepted": ok})
}

func (s *HttpSrv) CheckIndexFinished(c *gin.Context) {
	finished, err := v1.NewIndexLogic(c, s.Core).CheckIndexIsFinish()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"finished": finished})
}
