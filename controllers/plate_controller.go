// controllers/plate_controller.go
package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"slidelab/app"
	"slidelab/db"
	"slidelab/models"
	"slidelab/storage"
	"slidelab/validate"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PlateController struct{ *Srv }

func NewPlateController(s *Srv) *PlateController { return &PlateController{Srv: s} }

// POST /api/plates  管理员/库存委员会教员创建一块片
func (pc *PlateController) CreatePlate(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required"`
		VisualID string `json:"visualId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if res := validate.Barcode(in.VisualID); !res.OK {
		c.JSON(http.StatusBadRequest, app.H{"error": res.Reason})
		return
	}

	ctx := c.Request.Context()
	p := &models.Plate{
		ID:       uuid.NewString(),
		Name:     in.Name,
		VisualID: validate.NormalizeBarcode(in.VisualID),
		State:    models.PlateAvailable,
	}
	if err := pc.Repo.CreatePlate(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// 条码图：生成失败或没配对象存储都不影响建片
	if pc.Blobs != nil {
		if png, err := storage.RenderBarcodePNG(p.VisualID); err == nil {
			name := fmt.Sprintf("barcodes/%s.png", p.VisualID)
			if url, err := pc.Blobs.Upload(ctx, png, name, "image/png"); err == nil {
				if err := pc.Repo.SetPlateBarcodeURL(ctx, p.ID, url); err == nil {
					p.BarcodeURL = url
				}
			} else {
				log.Printf("[plate] barcode upload for %s: %v", p.VisualID, err)
			}
		}
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/plates  列表（含可借状态）
func (pc *PlateController) ListPlates(c *gin.Context) {
	plates, err := pc.Repo.ListPlates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"plates": plates})
}

// GET /api/plates/admin?q=&status=&page=&size=  管理端统一视图
func (pc *PlateController) ListPlatesAdmin(c *gin.Context) {
	q := db.AdminPlatesQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"), // "", "borrowed", "available", "overdue", "reserved", "retired"
	}
	if v := c.DefaultQuery("page", "1"); v != "" {
		q.Page, _ = strconv.Atoi(v)
	}
	if v := c.DefaultQuery("size", "20"); v != "" {
		q.Size, _ = strconv.Atoi(v)
	}

	res, err := pc.Repo.ListPlatesWithCurrentLoan(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "plates": res})
}

// POST /api/plates/:id/return  本人或有 loan:return-any 权限的人归还
func (pc *PlateController) ReturnPlate(c *gin.Context) {
	plateID := c.Param("id")
	if plateID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing plate id"})
		return
	}
	var in struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&in)

	note, res := validate.Note(in.Note)
	if !res.OK {
		c.JSON(http.StatusBadRequest, app.H{"error": res.Reason})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("userID")

	loan, err := pc.Repo.OpenLoanForPlate(ctx, plateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if loan == nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "no open loan for this plate"})
		return
	}
	if loan.UserID != userID && !app.Allowed(app.ActLoanReturnAny, c.GetString("role"), c.GetString("committee")) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}

	returned, err := pc.Repo.ReturnPlate(ctx, plateID, userID, note)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	// 归还后重算借用人的标记
	if n, err := pc.Repo.CountOpenLoans(ctx, loan.UserID); err == nil {
		_ = pc.Repo.SetUserHasOpenLoans(ctx, loan.UserID, n > 0)
	}
	c.JSON(http.StatusOK, returned)
}

// POST /api/plates/:id/retire
func (pc *PlateController) RetirePlate(c *gin.Context) {
	plateID := c.Param("id")
	if plateID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing plate id"})
		return
	}
	if err := pc.Repo.RetirePlate(c.Request.Context(), plateID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/plates/loans?status=open|returned&userId=&plateId=
func (pc *PlateController) ListLoans(c *gin.Context) {
	status := c.Query("status")
	userID := c.Query("userId")
	plateID := c.Query("plateId")
	ls, err := pc.Repo.ListLoans(c.Request.Context(), userID, plateID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}
