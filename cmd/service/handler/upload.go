package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/askbase-ai/askbase-ai/app/logic/v1"
	"github.com/askbase-ai/askbase-ai/app/response"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
)

func (s *HttpSrv) UploadKnowledgeBaseDocs(c *gin.Context) {
	kbUUID, _ := c.Params.Get("kbid")

	form, err := c.MultipartForm()
	if err != nil {
		response.APIError(c, errors.New("api.UploadKnowledgeBaseDocs.MultipartForm", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	files := form.File["files"]
	autoIndex := c.PostForm("auto_index") == "true"

	res, err := v1.NewUploadLogic(c, s.Core).UploadDocs(kbUUID, autoIndex, files)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}
