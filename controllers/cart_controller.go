// controllers/cart_controller.go
package controllers

import (
	"errors"
	"net/http"

	"slidelab/app"
	"slidelab/cart"

	"github.com/gin-gonic/gin"
)

type CartController struct{ *Srv }

func NewCartController(s *Srv) *CartController { return &CartController{Srv: s} }

// GET /api/cart
func (cc *CartController) List(c *gin.Context) {
	userID := c.GetString("userID")
	items, err := cc.Cart.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// POST /api/cart  {"code":"123456"}
func (cc *CartController) Add(c *gin.Context) {
	var in struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	userID := c.GetString("userID")
	item, err := cc.Cart.Add(c.Request.Context(), userID, in.Code)
	if err != nil {
		cc.writeCartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DELETE /api/cart/:plateId  幂等
func (cc *CartController) Remove(c *gin.Context) {
	plateID := c.Param("plateId")
	if plateID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing plate id"})
		return
	}
	userID := c.GetString("userID")
	if err := cc.Cart.Remove(c.Request.Context(), userID, plateID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// DELETE /api/cart
func (cc *CartController) Clear(c *gin.Context) {
	userID := c.GetString("userID")
	if err := cc.Cart.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/cart/confirm
func (cc *CartController) Confirm(c *gin.Context) {
	userID := c.GetString("userID")
	summary, err := cc.Cart.Confirm(c.Request.Context(), userID)
	if err != nil {
		// summary 非空说明借用都成立了，只是收尾步骤失败
		if summary != nil {
			c.JSON(http.StatusOK, app.H{"summary": summary, "warning": err.Error()})
			return
		}
		cc.writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"summary": summary})
}

// 错误分类 → HTTP 状态码；PartialError 必须把已写入/已补偿的片都交代清楚
func (cc *CartController) writeCartError(c *gin.Context, err error) {
	// PartialError 最先判：它 Unwrap 出底层原因（常见是 ConflictError），
	// 放到后面会被冲突分支截胡，丢掉已写入/已补偿清单
	var pe *cart.PartialError
	if errors.As(err, &pe) {
		c.JSON(http.StatusInternalServerError, app.H{
			"error":       "confirm failed partway",
			"failedPlate": pe.FailedPlate,
			"succeeded":   pe.Succeeded,
			"compensated": pe.Compensated,
			"cause":       pe.Err.Error(),
		})
		return
	}
	var ve *cart.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, app.H{"error": ve.Reason})
		return
	}
	if errors.Is(err, cart.ErrPlateNotFound) {
		c.JSON(http.StatusNotFound, app.H{"error": "plate not found"})
		return
	}
	if errors.Is(err, cart.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, app.H{"error": "cart is empty"})
		return
	}
	var ce *cart.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, app.H{"error": ce.Reason, "plateId": ce.PlateID})
		return
	}
	var le *cart.LimitError
	if errors.As(err, &le) {
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": le.Reason})
		return
	}
	c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
}
