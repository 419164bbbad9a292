package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"slidelab/app"
	"slidelab/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /auth/session
// 外部身份系统验证完用户后，用共享密钥来这里换一个业务会话。
// 我们不碰凭据，只认它给的 username/subject。
func (ac *AuthController) ExchangeSession(c *gin.Context) {
	secret := c.GetHeader("X-Auth-Exchange-Secret")
	if ac.Cfg.AuthExchangeSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(ac.Cfg.AuthExchangeSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, app.H{"error": "bad exchange secret"})
		return
	}

	var in struct {
		Username    string `json:"username" binding:"required"`
		DisplayName string `json:"displayName"`
		InviteToken string `json:"inviteToken"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	username := strings.ToLower(strings.TrimSpace(in.Username))

	// 带邀请码：校验后按邀请的角色建号
	role := ""
	if in.InviteToken != "" {
		inv, err := ac.Repo.GetInviteByToken(ctx, in.InviteToken)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid invite token"})
			return
		}
		if inv.UsedAt != nil || time.Now().After(inv.ExpiresAt) {
			c.JSON(http.StatusBadRequest, app.H{"error": "invite expired or already used"})
			return
		}
		if !strings.EqualFold(inv.Email, username) {
			c.JSON(http.StatusBadRequest, app.H{"error": "invite was issued for a different email"})
			return
		}
		if err := ac.Repo.MarkInviteUsed(ctx, in.InviteToken); err != nil {
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
			return
		}
		role = inv.Role
	}

	u, err := ac.Repo.FindOrCreateUser(ctx, username, in.DisplayName, role, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	// 老用户拿着管理员邀请再登录：升级角色
	if role == models.RoleAdmin && u.Role != models.RoleAdmin {
		if err := ac.Repo.SetUserRole(ctx, u.ID, role); err == nil {
			u.Role = role
		}
	}

	if err := ac.issueSession(ctx, c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
