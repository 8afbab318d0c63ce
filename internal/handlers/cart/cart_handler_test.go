package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "storefront-gateway/internal/domain/cart"
	"storefront-gateway/internal/platform"
	cartService "storefront-gateway/internal/service/cart"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSession struct {
	token    string
	verified bool
}

func (s *stubSession) Token() (string, bool) { return s.token, s.token != "" }
func (s *stubSession) Verified() bool        { return s.verified }

func newTestRouter(t *testing.T, upstream http.Handler, sess *stubSession) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if upstream == nil {
		upstream = http.NewServeMux()
	}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	api := platform.NewClient(srv.URL, 5*time.Second, zap.NewNop())
	carts := cartService.NewService(api, sess, nil, zap.NewNop())
	handler := NewCartHandler(carts, zap.NewNop())

	r := gin.New()
	r.GET("/cart/summary", handler.Summary)
	r.POST("/cart/items", handler.AddItem)
	r.PATCH("/cart/items/:id", handler.UpdateItem)
	r.POST("/cart/drawer/toggle", handler.ToggleDrawer)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSummaryWaivesFeeOnEmptyCart(t *testing.T) {
	r := newTestRouter(t, nil, &stubSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart/summary?deliveryFee=250", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, 0.0, data["subtotal"])
	assert.Equal(t, 0.0, data["deliveryFee"])
	assert.Equal(t, 0.0, data["total"])
}

func TestSummaryRejectsNegativeFee(t *testing.T) {
	r := newTestRouter(t, nil, &stubSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart/summary?deliveryFee=-5", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	r := newTestRouter(t, nil, &stubSession{token: "tok", verified: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items",
		strings.NewReader(`{"productId":"p1","quantity":-2}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Quantity must be at least 1", body["message"])
}

func TestUpdateItemRefetchesAfterSuccess(t *testing.T) {
	patched := false
	fetched := false
	mux := http.NewServeMux()
	mux.HandleFunc("/cart/items/line-1", func(w http.ResponseWriter, r *http.Request) {
		patched = true
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"cart": domain.Cart{ID: "cart-1", TotalAmount: 100}},
		})
	})
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		fetched = true
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"cart": domain.Cart{ID: "cart-1", TotalAmount: 120}},
		})
	})
	r := newTestRouter(t, mux, &stubSession{token: "tok", verified: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/cart/items/line-1",
		strings.NewReader(`{"quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, patched)
	assert.True(t, fetched)

	// The response reflects the refetched cart, not the patch echo.
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, 120.0, data["totalAmount"])
}

func TestToggleDrawer(t *testing.T) {
	r := newTestRouter(t, nil, &stubSession{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/drawer/toggle", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["isOpen"])
}
