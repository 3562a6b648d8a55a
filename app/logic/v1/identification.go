package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/security"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

type _userInfo struct {
	ctx  context.Context
	core *core.Core
	u    *security.TokenClaims
}

func (u *_userInfo) GetUserInfo() security.TokenClaims {
	return *u.u
}

// checkKnowledgeBasePrivilege allows the knowledge base owner and admins.
func (u *_userInfo) checkKnowledgeBasePrivilege(kb *types.KnowledgeBase) error {
	claims := u.GetUserInfo()
	if claims.IsAdmin() {
		return nil
	}
	if kb.UserID != claims.User {
		return errors.New("_userInfo.checkKnowledgeBasePrivilege", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}
	return nil
}

// checkKnowledgeBaseVisible additionally admits readers of public bases.
func (u *_userInfo) checkKnowledgeBaseVisible(kb *types.KnowledgeBase) error {
	if kb.IsPublic {
		return nil
	}
	return u.checkKnowledgeBasePrivilege(kb)
}

func SetupUserInfo(ctx context.Context, core *core.Core) UserInfo {
	userInfo, ok := InjectTokenClaim(ctx)
	if !ok {
		slog.Error("Not found user in context", slog.String("component", "logic.v1.setupUserInfo"))
		userInfo = security.TokenClaims{}
	}
	return &_userInfo{
		ctx:  ctx,
		u:    &userInfo,
		core: core,
	}
}

type UserInfo interface {
	GetUserInfo() security.TokenClaims
	checkKnowledgeBasePrivilege(kb *types.KnowledgeBase) error
	checkKnowledgeBaseVisible(kb *types.KnowledgeBase) error
}
