// app/policy.go
package app

import (
	"net/http"

	"slidelab/models"

	"github.com/gin-gonic/gin"
)

// 权限全部集中在这张表：动作 → (role, committee) 谓词。
// handler 里不要再散落 role == "admin" 之类的判断。
type Action string

const (
	ActPlateCreate   Action = "plate:create"
	ActPlateRetire   Action = "plate:retire"
	ActLoanReturnAny Action = "loan:return-any" // 替别人归还
	ActUserManage    Action = "user:manage"
	ActInviteCreate  Action = "invite:create"
	ActScanLogView   Action = "scanlog:view"
)

const InventoryCommittee = "inventory"

var policy = map[Action]func(role, committee string) bool{
	ActPlateCreate:   adminOrInventoryInstructor,
	ActPlateRetire:   adminOrInventoryInstructor,
	ActLoanReturnAny: adminOrInventoryInstructor,
	ActUserManage:    adminOnly,
	ActInviteCreate:  adminOnly,
	ActScanLogView:   adminOnly,
}

func adminOnly(role, _ string) bool { return role == models.RoleAdmin }

func adminOrInventoryInstructor(role, committee string) bool {
	return role == models.RoleAdmin ||
		(role == models.RoleInstructor && committee == InventoryCommittee)
}

// Allowed 供 handler 内部做分支判断（比如“管理员或本人”）
func Allowed(act Action, role, committee string) bool {
	p, ok := policy[act]
	return ok && p(role, committee)
}

// Require 路由中间件版；依赖 AuthRequired 先把 role/committee 放进 Context
func Require(act Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		committee := c.GetString("committee")
		if !Allowed(act, role, committee) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
