// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"slidelab/app"
	"slidelab/cart"
	"slidelab/db"
	"slidelab/scanner"
	"slidelab/session"
	"slidelab/storage"

	"github.com/google/uuid"
)

type Srv struct {
	Repo    *db.Repo
	AppSess *session.AppSessionStore
	Cart    *cart.Service
	Scans   *scanner.SessionStore
	Blobs   *storage.ObjectStore
	Cfg     app.Config
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	return &Srv{
		Repo:    repo,
		AppSess: a.AppSessions(),
		Cart: cart.New(repo, cart.Config{
			TTL:          a.Config.CartTTL,
			LoanTerm:     a.Config.LoanTerm,
			MaxOpenLoans: a.Config.MaxOpenLoans,
			MaxCartItems: a.Config.MaxCartItems,
		}),
		Scans: scanner.NewSessionStore(a.RDB, 2*time.Minute),
		Blobs: a.Blobs,
		Cfg:   a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string, ip, ua string) error {
	_ = s.Repo.TouchUserLogin(ctx, userID, ip, ua) // 快照失败不阻塞登录
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}
