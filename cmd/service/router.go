package service

import (
	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/app/response"
	"github.com/askbase-ai/askbase-ai/cmd/service/handler"
	"github.com/askbase-ai/askbase-ai/cmd/service/middleware"
	"github.com/askbase-ai/askbase-ai/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.AcceptLanguage())

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		kb := authed.Group("/knowledge-base")
		{
			kb.POST("", s.CreateKnowledgeBase)
			kb.GET("/search", s.SearchKnowledgeBases)
			kb.GET("/search/mine", s.SearchMyKnowledgeBases)
			kb.GET("/index/finished", s.CheckIndexFinished)

			kb.GET("/:kbid", s.GetKnowledgeBase)
			kb.PUT("/:kbid", s.UpdateKnowledgeBase)
			kb.DELETE("/:kbid", s.DeleteKnowledgeBase)
			kb.POST("/:kbid/star", s.ToggleKnowledgeBaseStar)

			kb.POST("/:kbid/docs", s.UploadKnowledgeBaseDocs)
			kb.GET("/:kbid/items", s.ListKnowledgeBaseItems)
			kb.DELETE("/:kbid/items/:itemid", s.DeleteKnowledgeBaseItem)

			kb.POST("/:kbid/index", s.IndexKnowledgeBase)
			kb.POST("/index/items", s.IndexKnowledgeBaseItems)

			kb.POST("/:kbid/qa", s.CreateQaRecord)
			kb.GET("/:kbid/qa/records", s.ListQaRecords)
		}

		qa := authed.Group("/qa")
		{
			qa.GET("/usage", s.GetQaUsage)
			qa.GET("/:qaid/ask", s.AskQuestion)
			qa.POST("/:qaid/stop", s.StopQaStream)
			qa.GET("/:qaid/refs", s.GetQaRecordRefs)
			qa.DELETE("/:qaid", s.DeleteQaRecord)
		}
	}
}
