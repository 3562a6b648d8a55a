package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/askbase-ai/askbase-ai/app/logic/v1"
	"github.com/askbase-ai/askbase-ai/app/response"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func (s *HttpSrv) CreateKnowledgeBase(c *gin.Context) {
	var (
		err error
		req v1.CreateKnowledgeBaseArgs
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	kb, err := v1.NewKnowledgeBaseLogic(c, s.Core).CreateKnowledgeBase(req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, kb)
}

func (s *HttpSrv) UpdateKnowledgeBase(c *gin.Context) {
	var (
		err error
		req v1.UpdateKnowledgeBaseArgs
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	kbUUID, _ := c.Params.Get("kbid")
	kb, err := v1.NewKnowledgeBaseLogic(c, s.Core).UpdateKnowledgeBase(kbUUID, req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, kb)
}

func (s *HttpSrv) GetKnowledgeBase(c *gin.Context) {
	kbUUID, _ := c.Params.Get("kbid")
	kb, err := v1.NewKnowledgeBaseLogic(c, s.Core).GetKnowledgeBase(kbUUID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, kb)
}

type SearchKnowledgeBaseRequest struct {
	Keywords string `json:"keywords" form:"keywords" binding:"max=64"`
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize" binding:"max=50"`
}

func (s *HttpSrv) SearchKnowledgeBases(c *gin.Context) {
	var (
		err error
		req SearchKnowledgeBaseRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewKnowledgeBaseLogic(c, s.Core).Search(req.Keywords, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

func (s *HttpSrv) SearchMyKnowledgeBases(c *gin.Context) {
	var (
		err error
		req SearchKnowledgeBaseRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewKnowledgeBaseLogic(c, s.Core).SearchMine(req.Keywords, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

func (s *HttpSrv) DeleteKnowledgeBase(c *gin.Context) {
	kbUUID, _ := c.Params.Get("kbid")
	if err := v1.NewKnowledgeBaseLogic(c, s.Core).DeleteKnowledgeBase(kbUUID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) ToggleKnowledgeBaseStar(c *gin.Context) {
	kbUUID, _ := c.Params.Get("kbid")
	res, err := v1.NewKnowledgeBaseLogic(c, s.Core).ToggleStar(kbUUID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

type ListKnowledgeBaseItemsRequest struct {
	Keywords string `json:"keywords" form:"keywords" binding:"max=64"`
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize" binding:"max=50"`
}

func (s *HttpSrv) ListKnowledgeBaseItems(c *gin.Context) {
	var (
		err error
		req ListKnowledgeBaseItemsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	kbUUID, _ := c.Params.Get("kbid")
	res, err := v1.NewKnowledgeBaseLogic(c, s.Core).ListItems(kbUUID, req.Keywords, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

func (s *HttpSrv) DeleteKnowledgeBaseItem(c *gin.Context) {
	kbUUID, _ := c.Params.Get("kbid")
	itemUUID, _ := c.Params.Get("itemid")
	if err := v1.NewKnowledgeBaseLogic(c, s.Core).DeleteItem(kbUUID, itemUUID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
