package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"slidelab/app"
	"slidelab/models"
	"slidelab/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct {
	*Srv
	appSess *session.AppSessionStore
}

func GetUserController(s *Srv) *UserController {
	return &UserController{Srv: s, appSess: s.AppSess}
}

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "user id is required"})
		return
	}
	if _, err := uuid.Parse(id); err != nil { // 校验 UUID 格式
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	user, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"user": user,
	})
}

// PUT /api/users/:id/role  {"role":"instructor"}
func (uc *UserController) SetRole(c *gin.Context) {
	id := c.Param("id")
	var in struct {
		Role string `json:"role" binding:"required,oneof=admin instructor member"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := uc.Repo.SetUserRole(c.Request.Context(), id, in.Role); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing id"})
		return
	}

	// 不允许删除自己，避免锁死
	if uid := c.GetString("userID"); uid == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}

	target, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	if target.Role == models.RoleAdmin {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
		return
	}
	if target.HasOpenLoans {
		c.JSON(http.StatusConflict, app.H{"error": "user still has open loans"})
		return
	}

	if err := uc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	// ✅ 关键：撤销该用户的所有登录会话
	_ = uc.appSess.RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/users/me/photo  multipart 上传头像，存对象存储
func (uc *UserController) UploadPhoto(c *gin.Context) {
	if uc.Blobs == nil {
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "object storage not configured"})
		return
	}
	userID := c.GetString("userID")

	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing photo file"})
		return
	}
	if fh.Size > 5<<20 {
		c.JSON(http.StatusBadRequest, app.H{"error": "photo too large (max 5MB)"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	// 旧照片先删，删不掉也不挡新照片
	if u, err := uc.Repo.FindUserByID(ctx, userID); err == nil && u.PhotoURL != "" {
		_ = uc.Blobs.Delete(ctx, u.PhotoURL)
	}

	name := fmt.Sprintf("photos/%s/%s", userID, fh.Filename)
	url, err := uc.Blobs.Upload(ctx, data, name, fh.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := uc.Repo.SetUserPhotoURL(ctx, userID, url); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"photoUrl": url})
}
