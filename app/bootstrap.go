// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"slidelab/db"
	"slidelab/models"
)

// BootstrapFirstAdmin 库里一个管理员都没有时，给 BOOTSTRAP_EMAIL 发一张
// 管理员邀请，打印链接直接点开注册
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	buf := make([]byte, 16)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	if _, err := repo.CreateInvite(ctx, cfg.BootstrapEmail, token, models.RoleAdmin, time.Now().Add(24*time.Hour), "bootstrap"); err != nil {
		log.Printf("bootstrap invite failed: %v", err)
		return
	}

	link := fmt.Sprintf("%s/login?inviteToken=%s", cfg.WebOrigin, token)
	log.Printf("[BOOTSTRAP] No admin found, created an admin invite for %s", cfg.BootstrapEmail)
	log.Printf("[BOOTSTRAP] Open this URL to register the first admin: %s", link)
}
