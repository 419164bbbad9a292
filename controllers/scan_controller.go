// controllers/scan_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"slidelab/app"
	"slidelab/scanner"

	"github.com/gin-gonic/gin"
)

type ScanController struct{ *Srv }

func NewScanController(s *Srv) *ScanController { return &ScanController{Srv: s} }

// POST /api/scan/sessions
func (sc *ScanController) Start(c *gin.Context) {
	sid, err := sc.Scans.Start(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app.H{"sessionId": sid})
}

// POST /api/scan/sessions/:sid/observations  {"code":"654321","confidence":80}
// 前端每解出一帧就打一发；凑够共识才返回 accepted
func (sc *ScanController) Observe(c *gin.Context) {
	sid := c.Param("sid")
	var in struct {
		Code       string  `json:"code" binding:"required"`
		Confidence float64 `json:"confidence"`
		Frames     int     `json:"frames"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	code, accepted, err := sc.Scans.Observe(ctx, sid, in.Code, in.Confidence, time.Now())
	if err != nil {
		if errors.Is(err, scanner.ErrNoSession) {
			c.JSON(http.StatusNotFound, app.H{"error": "scan session not found or expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if !accepted {
		c.JSON(http.StatusOK, app.H{"status": "pending"})
		return
	}

	// 审计 + 顺手把片的信息带回去，前端省一次查询
	actorID := c.GetString("userID")
	actorName := c.GetString("username")
	if _, err := sc.Repo.LogScan(ctx, actorID, actorName, code, in.Confidence, in.Frames); err != nil {
		// 审计失败不挡扫码结果
		c.JSON(http.StatusOK, app.H{"status": "accepted", "code": code})
		return
	}
	plate, _ := sc.Repo.FindPlateByVisualID(ctx, code)
	c.JSON(http.StatusOK, app.H{"status": "accepted", "code": code, "plate": plate})
}

// DELETE /api/scan/sessions/:sid
func (sc *ScanController) Stop(c *gin.Context) {
	sc.Scans.Stop(c.Request.Context(), c.Param("sid"))
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/scan/logs?limit=50  （仅管理员）
func (sc *ScanController) ListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := sc.Repo.ListScanLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"logs": logs})
}
