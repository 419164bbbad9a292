package routes

import (
	"net/http"
	"time"

	"slidelab/app"
	"slidelab/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	cartCtl := controllers.NewCartController(s)
	scanCtl := controllers.NewScanController(s)
	plateCtl := controllers.NewPlateController(s)
	uc := controllers.GetUserController(s)
	inviteCtl := controllers.GetInviteController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// 会话（外部身份系统对接）
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/session", authCtl.ExchangeSession)
	}

	authed := r.Group("/auth", authMW, seenMW)
	{
		authed.GET("/whoami", func(c *app.Ctx) {
			uid := c.GetString("userID")
			u, err := s.Repo.FindUserByID(c.Request.Context(), uid)
			if err != nil {
				c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
				return
			}
			c.JSON(http.StatusOK, app.H{"user": u})
		})

		// 登出
		authed.POST("/logout", func(c *app.Ctx) {
			if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
				_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     app.AppSessionCookie,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.JSON(http.StatusOK, app.H{"ok": true})
		})
	}

	// ------------------------------
	// 购物车（预约）
	// ------------------------------
	cartG := r.Group("/api/cart", authMW, seenMW)
	{
		cartG.GET("", cartCtl.List)
		cartG.POST("", cartCtl.Add)
		cartG.DELETE("/:plateId", cartCtl.Remove)
		cartG.DELETE("", cartCtl.Clear)
		cartG.POST("/confirm", cartCtl.Confirm)
	}

	// ------------------------------
	// 扫码共识
	// ------------------------------
	scan := r.Group("/api/scan", authMW, seenMW)
	{
		scan.POST("/sessions", scanCtl.Start)
		scan.POST("/sessions/:sid/observations", scanCtl.Observe)
		scan.DELETE("/sessions/:sid", scanCtl.Stop)
	}
	scanAdmin := r.Group("/api/scan", authMW, app.Require(app.ActScanLogView))
	{
		scanAdmin.GET("/logs", scanCtl.ListLogs)
	}

	// ------------------------------
	// 片（Plate 唯一件）
	// ------------------------------
	platesManage := r.Group("/api/plates", authMW, app.Require(app.ActPlateCreate))
	{
		platesManage.POST("", plateCtl.CreatePlate)
		platesManage.GET("/admin", plateCtl.ListPlatesAdmin)
	}
	platesRetire := r.Group("/api/plates", authMW, app.Require(app.ActPlateRetire))
	{
		platesRetire.POST("/:id/retire", plateCtl.RetirePlate)
	}

	// 用户：浏览/归还/记录
	plates := r.Group("/api/plates", authMW, seenMW)
	{
		plates.GET("", plateCtl.ListPlates)
		plates.POST("/:id/return", plateCtl.ReturnPlate)
		plates.GET("/loans", plateCtl.ListLoans) // ?status=open|returned&userId=&plateId=
	}

	// ------------------------------
	// 用户管理（仅管理员）+ 本人头像
	// ------------------------------
	users := r.Group("/api/users", authMW, app.Require(app.ActUserManage))
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.GET("/:id", uc.GetUser)
		users.PUT("/:id/role", uc.SetRole)
		users.DELETE("/:id", uc.DeleteUser)
	}
	me := r.Group("/api/users/me", authMW, seenMW)
	{
		me.POST("/photo", uc.UploadPhoto)
	}

	// ------------------------------
	// 邀请（仅管理员）
	// ------------------------------
	admin := r.Group("/admin", authMW, app.Require(app.ActInviteCreate))
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
	}
}
