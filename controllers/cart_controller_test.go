package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slidelab/cart"
	"slidelab/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 只给 HTTP 错误映射做冒烟；业务分支覆盖在 cart 包的测试里
type fakeCartStore struct {
	plates   map[string]*models.Plate
	claims   map[string]*models.CartItem // plateID → 别人的 active 占位
	items    []models.CartItem
	loanFull bool
}

func newFakeCartStore(plates ...*models.Plate) *fakeCartStore {
	f := &fakeCartStore{
		plates: map[string]*models.Plate{},
		claims: map[string]*models.CartItem{},
	}
	for _, p := range plates {
		f.plates[p.ID] = p
	}
	return f
}

func (f *fakeCartStore) FindPlateByVisualID(_ context.Context, code string) (*models.Plate, error) {
	for _, p := range f.plates {
		if p.VisualID == code {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakeCartStore) FindPlateByID(_ context.Context, id string) (*models.Plate, error) {
	return f.plates[id], nil
}
func (f *fakeCartStore) ActiveCartItemForPlate(_ context.Context, plateID string, _ time.Time) (*models.CartItem, error) {
	return f.claims[plateID], nil
}
func (f *fakeCartStore) OpenLoanForPlate(context.Context, string) (*models.Loan, error) {
	return nil, nil
}
func (f *fakeCartStore) CountOpenLoans(context.Context, string) (int64, error) {
	if f.loanFull {
		return 100, nil
	}
	return 0, nil
}
func (f *fakeCartStore) CountActiveCartItems(context.Context, string, time.Time) (int64, error) {
	return int64(len(f.items)), nil
}
func (f *fakeCartStore) CreateCartItem(_ context.Context, item *models.CartItem) error {
	f.items = append(f.items, *item)
	return nil
}
func (f *fakeCartStore) CancelCartItem(context.Context, string, string) error { return nil }
func (f *fakeCartStore) CancelAllCartItems(context.Context, string) (int64, error) {
	n := int64(len(f.items))
	f.items = nil
	return n, nil
}
func (f *fakeCartStore) ListActiveCartItems(context.Context, string, time.Time) ([]models.CartItem, error) {
	return f.items, nil
}
func (f *fakeCartStore) MarkCartItemsProcessed(context.Context, string, []string) error { return nil }
func (f *fakeCartStore) BorrowPlate(context.Context, string, string, *time.Time, string) (*models.Loan, error) {
	return &models.Loan{}, nil
}
func (f *fakeCartStore) ReturnPlate(context.Context, string, string, string) (*models.Loan, error) {
	return nil, nil
}
func (f *fakeCartStore) SetUserHasOpenLoans(context.Context, string, bool) error { return nil }

func newCartRouter(store cart.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cc := NewCartController(&Srv{Cart: cart.New(store, cart.Config{})})
	g := r.Group("/api/cart", func(c *gin.Context) { c.Set("userID", "u1") })
	g.GET("", cc.List)
	g.POST("", cc.Add)
	g.POST("/confirm", cc.Confirm)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func availablePlate(id, code string) *models.Plate {
	return &models.Plate{ID: id, VisualID: code, State: models.PlateAvailable}
}

func TestCartAddStatusMapping(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r := newCartRouter(newFakeCartStore(availablePlate("p1", "123456")))
		w, out := doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"123456"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "p1", out["plateId"])
	})

	t.Run("bad format is 400", func(t *testing.T) {
		r := newCartRouter(newFakeCartStore(availablePlate("p1", "123456")))
		w, _ := doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"12a456"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown plate is 404", func(t *testing.T) {
		r := newCartRouter(newFakeCartStore())
		w, _ := doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"999999"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("conflict is 409 with plateId", func(t *testing.T) {
		f := newFakeCartStore(availablePlate("p1", "123456"))
		f.claims["p1"] = &models.CartItem{UserID: "someone-else", PlateID: "p1"}
		r := newCartRouter(f)
		w, out := doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"123456"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "p1", out["plateId"])
	})

	t.Run("ceiling is 422", func(t *testing.T) {
		f := newFakeCartStore(availablePlate("p1", "123456"))
		f.loanFull = true
		r := newCartRouter(f)
		w, _ := doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"123456"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestCartConfirmEmptyIs400(t *testing.T) {
	r := newCartRouter(newFakeCartStore())
	w, out := doJSON(t, r, http.MethodPost, "/api/cart/confirm", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart is empty", out["error"])
}

// 两标签页竞争：车里两块片，confirm 时第二块被别人抢了。
// 响应必须带完整的 partial 报告，不能退化成一个光秃秃的 409。
func TestCartConfirmPartialFailureKeepsReport(t *testing.T) {
	f := newFakeCartStore(availablePlate("p1", "111111"), availablePlate("p2", "222222"))
	r := newCartRouter(f)

	w, _ := doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"111111"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/api/cart", `{"code":"222222"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// 加车之后、confirm 之前，p2 被另一个用户占走
	f.claims["p2"] = &models.CartItem{UserID: "someone-else", PlateID: "p2"}

	w, out := doJSON(t, r, http.MethodPost, "/api/cart/confirm", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "p2", out["failedPlate"])
	assert.Equal(t, []any{"p1"}, out["succeeded"])
	assert.Equal(t, []any{"p1"}, out["compensated"])
	assert.Contains(t, out["cause"], "unavailable")
}
