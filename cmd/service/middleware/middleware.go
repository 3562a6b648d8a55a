package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/askbase-ai/askbase-ai/app/core"
	v1 "github.com/askbase-ai/askbase-ai/app/logic/v1"
	"github.com/askbase-ai/askbase-ai/app/response"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/security"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// AcceptLanguage resolves the client language, en or zh-CN.
func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lang := ctx.Request.Header.Get("Accept-Language")
		if lang == "" {
			ctx.Set(v1.LANGUAGE_KEY, utils.LANGUAGE_EN)
			return
		}

		res := utils.ParseAcceptLanguage(lang)
		if len(res) == 0 {
			ctx.Set(v1.LANGUAGE_KEY, utils.LANGUAGE_EN)
			return
		}

		ctx.Set(v1.LANGUAGE_KEY, lo.If(strings.Contains(res[0].Tag, "zh"), utils.LANGUAGE_CN).Else(utils.LANGUAGE_EN))
	}
}

const (
	AUTH_TOKEN_HEADER_KEY = "Authorization"

	// claims stay cached briefly so hot paths skip signature checks
	tokenCacheTTL = time.Minute * 10
)

func Authorization(core *core.Core) gin.HandlerFunc {
	tracePrefix := "middleware.Authorization"
	return func(ctx *gin.Context) {
		tokenValue := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader(AUTH_TOKEN_HEADER_KEY), "Bearer"))
		if tokenValue == "" {
			response.APIError(ctx, errors.New(tracePrefix, i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}

		claims, err := verifyWithCache(ctx, core, tokenValue)
		if err != nil {
			response.APIError(ctx, errors.Trace(tracePrefix, err))
			return
		}

		ctx.Set(v1.TOKEN_CONTEXT_KEY, *claims)
		ctx.Set("user_id", claims.User)
	}
}

func verifyWithCache(ctx *gin.Context, core *core.Core, tokenValue string) (*security.TokenClaims, error) {
	cacheKey := types.UserTokenCacheKey(utils.MD5(tokenValue))

	if cached, err := core.Cache().Get(ctx, cacheKey); err == nil && cached != "" {
		claims := &security.TokenClaims{}
		if err = json.Unmarshal([]byte(cached), claims); err == nil {
			if err = claims.Valid(); err == nil {
				return claims, nil
			}
		}
	}

	claims, err := security.VerifyToken(tokenValue, []byte(core.Cfg().Security.JWTSecret))
	if err != nil {
		return nil, errors.New("middleware.verifyWithCache", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized)
	}

	if raw, err := json.Marshal(claims); err == nil {
		if err = core.Cache().SetEx(ctx, cacheKey, string(raw), tokenCacheTTL); err != nil {
			slog.Warn("failed to cache token claims", slog.String("error", err.Error()))
		}
	}
	return claims, nil
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}
