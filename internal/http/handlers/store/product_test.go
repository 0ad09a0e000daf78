package store_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/store-next/internal/cache"
	"github.com/store-next/internal/config"
	"github.com/store-next/internal/models"
	"github.com/store-next/internal/provider"
	"github.com/store-next/internal/repository"
	"github.com/store-next/internal/router"
	"github.com/store-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ShoppingCart{}, &models.ShoppingCartItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxSize = 10 << 20
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png"}
	cfg.Upload.AllowedExtensions = []string{".jpg", ".jpeg", ".png"}

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	container := &provider.Container{
		Config:         cfg,
		ProductRepo:    productRepo,
		CartRepo:       cartRepo,
		ProductService: service.NewProductService(productRepo, cartRepo),
		CartService:    service.NewCartService(cartRepo, productRepo),
		UploadService:  service.NewUploadService(cfg),
	}
	return router.SetupRouter(cfg, container)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v (body %q)", err, w.Body.String())
	}
	return body
}

func createTestProduct(t *testing.T, r *gin.Engine, body map[string]any) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/products/new", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status want 201 got %d (body %s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	id, ok := resp["id"].(float64)
	if !ok || id == 0 {
		t.Fatalf("create response missing id: %v", resp)
	}
	return uint(id)
}

func productBody() map[string]any {
	return map[string]any{
		"name":        "Mineral Water Strawberry",
		"description": "Natural-flavored strawberry with an anti-oxidant kick.",
		"price":       "1.00",
	}
}

func TestCreateRejectsZeroPrice(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["price"] = "0"
	body["description"] = "Hi"

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/new", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["price"] != "Must be above $0.00" {
		t.Fatalf("price message got %v", resp["price"])
	}
}

func TestCreateRejectsNonNumericPrice(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["price"] = "abc"

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/new", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["price"] != "A valid number is required" {
		t.Fatalf("price message got %v", resp["price"])
	}
}

func TestCreateMissingPriceReportsRequiredField(t *testing.T) {
	r := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/new", map[string]any{
		"name":        "Water",
		"description": "OK drink",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["price"] != "This field is required." {
		t.Fatalf("price message want %q got %v", "This field is required.", resp["price"])
	}

	// 显式 null 同样按缺失处理
	w = doJSON(t, r, http.MethodPost, "/api/v1/products/new", map[string]any{
		"name":        "Water",
		"description": "OK drink",
		"price":       nil,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("null price status want 400 got %d", w.Code)
	}
	resp = decodeBody(t, w)
	if resp["price"] != "This field is required." {
		t.Fatalf("null price message want %q got %v", "This field is required.", resp["price"])
	}
}

func TestCreateAcceptsNumericPriceToken(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["price"] = 2.50

	w := doJSON(t, r, http.MethodPost, "/api/v1/products/new", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status want 201 got %d (body %s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["price"] != "2.50" {
		t.Fatalf("price want 2.50 got %v", resp["price"])
	}
	if resp["is_on_sale"] != false {
		t.Fatalf("is_on_sale want false got %v", resp["is_on_sale"])
	}
	if resp["current_price"] != "2.50" {
		t.Fatalf("current_price want 2.50 got %v", resp["current_price"])
	}
	if items, ok := resp["cart_items"].([]any); !ok || len(items) != 0 {
		t.Fatalf("cart_items want empty array got %v", resp["cart_items"])
	}
}

func TestRetrieveProjectionShape(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["sale_start"] = "12:01 AM 1 January 2020"
	body["sale_end"] = "11:59 PM 31 December 2099"
	id := createTestProduct(t, r, body)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	resp := decodeBody(t, w)

	if resp["is_on_sale"] != true {
		t.Fatalf("is_on_sale want true got %v", resp["is_on_sale"])
	}
	if resp["current_price"] != "0.92" {
		t.Fatalf("current_price want 0.92 got %v", resp["current_price"])
	}
	if resp["sale_start"] != "12:01 AM 01 January 2020" {
		t.Fatalf("sale_start got %v", resp["sale_start"])
	}
	items, ok := resp["cart_items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("cart_items want empty array got %v", resp["cart_items"])
	}
	if resp["photo"] != nil {
		t.Fatalf("photo want null got %v", resp["photo"])
	}
}

func TestRetrieveMissingProductReturns404EmptyBody(t *testing.T) {
	r := setupServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/products/999/", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "" {
		t.Fatalf("404 body want empty got %q", w.Body.String())
	}
}

func TestListOnSaleFilterBranches(t *testing.T) {
	r := setupServer(t)

	// 无促销窗口的商品：on_sale=true 排除，on_sale=false 命中
	never := createTestProduct(t, r, productBody())

	onSale := productBody()
	onSale["name"] = "Vitamin Water Zero"
	onSale["sale_start"] = "12:01 AM 1 January 2020"
	onSale["sale_end"] = "11:59 PM 31 December 2099"
	active := createTestProduct(t, r, onSale)

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/?on_sale=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	results := resp["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("on_sale=true results want 1 got %d", len(results))
	}
	if uint(results[0].(map[string]any)["id"].(float64)) != active {
		t.Fatalf("on_sale=true should return the active product")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/products/?on_sale=false", nil)
	resp = decodeBody(t, w)
	results = resp["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("on_sale=false results want 1 got %d", len(results))
	}
	if uint(results[0].(map[string]any)["id"].(float64)) != never {
		t.Fatalf("on_sale=false should return the null-sale_end product")
	}
}

func TestListPaginationEnvelope(t *testing.T) {
	r := setupServer(t)
	for i := 0; i < 7; i++ {
		body := productBody()
		body["name"] = fmt.Sprintf("Water %d", i)
		createTestProduct(t, r, body)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/?limit=3", nil)
	resp := decodeBody(t, w)
	if resp["count"].(float64) != 7 {
		t.Fatalf("count want 7 got %v", resp["count"])
	}
	if resp["previous"] != nil {
		t.Fatalf("first page previous want null got %v", resp["previous"])
	}
	next, ok := resp["next"].(string)
	if !ok || !strings.Contains(next, "offset=3") || !strings.Contains(next, "limit=3") {
		t.Fatalf("next link got %v", resp["next"])
	}

	// 连续窗口拼接应得到完整列表
	seen := map[float64]bool{}
	for offset := 0; offset < 9; offset += 3 {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/products/?limit=3&offset=%d", offset), nil)
		page := decodeBody(t, w)
		for _, item := range page["results"].([]any) {
			id := item.(map[string]any)["id"].(float64)
			if seen[id] {
				t.Fatalf("windows overlap at id %v", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 7 {
		t.Fatalf("window union want 7 products got %d", len(seen))
	}
}

func TestListMalformedIDFilter(t *testing.T) {
	r := setupServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/products/?id=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["id"] != "A valid integer is required." {
		t.Fatalf("id message got %v", resp["id"])
	}
}

func TestListSearchFilter(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["name"] = "Sparkling Lemon"
	body["description"] = "Lightly carbonated with a citrus bite."
	createTestProduct(t, r, body)
	createTestProduct(t, r, productBody())

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/?search=lemon", nil)
	resp := decodeBody(t, w)
	results := resp["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("search results want 1 got %d", len(results))
	}
	if results[0].(map[string]any)["name"] != "Sparkling Lemon" {
		t.Fatalf("search hit got %v", results[0])
	}
}

func TestUpdateFullLifecycle(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["sale_start"] = "12:01 AM 1 January 2020"
	body["sale_end"] = "11:59 PM 31 December 2099"
	id := createTestProduct(t, r, body)

	// PUT 不带促销时间，窗口清除
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/products/%d/", id), productBody())
	if w.Code != http.StatusOK {
		t.Fatalf("put status want 200 got %d (body %s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["sale_start"] != nil || resp["sale_end"] != nil {
		t.Fatalf("put must clear absent sale bounds, got %v %v", resp["sale_start"], resp["sale_end"])
	}
	if resp["is_on_sale"] != false {
		t.Fatalf("is_on_sale want false got %v", resp["is_on_sale"])
	}

	// PATCH 只改名称，其余字段保留
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/products/%d/", id), map[string]any{"name": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status want 200 got %d", w.Code)
	}
	resp = decodeBody(t, w)
	if resp["name"] != "Renamed" {
		t.Fatalf("patch name got %v", resp["name"])
	}
	if resp["description"] != productBody()["description"] {
		t.Fatalf("patch must keep description, got %v", resp["description"])
	}

	// DELETE 后再读 404
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d/", id), nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusNoContent {
		t.Fatalf("delete status want 204 got %d", w2.Code)
	}
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/", id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted product status want 404 got %d", w.Code)
	}
}

func TestUpdateRejectsMalformedSaleTime(t *testing.T) {
	r := setupServer(t)
	id := createTestProduct(t, r, productBody())

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/products/%d/", id), map[string]any{
		"sale_start": "2020-01-01T00:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if _, ok := resp["sale_start"]; !ok {
		t.Fatalf("expected sale_start field error, got %v", resp)
	}
}

func TestDeleteMissingProduct(t *testing.T) {
	r := setupServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/555/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := setupServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/new", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status want 405 got %d", w.Code)
	}
}

func TestMultipartCreateWithWarrantyOnUpdate(t *testing.T) {
	r := setupServer(t)
	id := createTestProduct(t, r, productBody())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("warranty", "warranty.txt")
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write([]byte("90 days parts and labor\nNo clock repairs")); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/v1/products/%d/", id), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d (body %s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	description := resp["description"].(string)
	if !strings.Contains(description, "\n\nWarranty Information:\n") {
		t.Fatalf("description missing warranty header: %q", description)
	}
	if !strings.Contains(description, "90 days parts and labor; No clock repairs") {
		t.Fatalf("description missing folded warranty lines: %q", description)
	}
}

func TestCacheCoherenceOnUpdateAndDelete(t *testing.T) {
	client := redislib.NewClient(&redislib.Options{Addr: "127.0.0.1:6379", DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	cache.UseClient(client, "")
	t.Cleanup(func() {
		client.FlushDB(ctx)
		cache.UseClient(nil, "")
	})

	r := setupServer(t)
	id := createTestProduct(t, r, productBody())

	// 创建不写缓存
	if summary, err := cache.GetProductSummary(ctx, id); err != nil || summary != nil {
		t.Fatalf("create must not populate cache, got %v %v", summary, err)
	}

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/products/%d/", id), productBody())
	if w.Code != http.StatusOK {
		t.Fatalf("put status want 200 got %d", w.Code)
	}
	summary, err := cache.GetProductSummary(ctx, id)
	if err != nil {
		t.Fatalf("cache read failed: %v", err)
	}
	if summary == nil {
		t.Fatalf("update must populate product_data_%d", id)
	}
	if summary.Name != productBody()["name"] {
		t.Fatalf("cached name got %q", summary.Name)
	}
	// 外部消费方按未加前缀的键读取
	if err := client.Get(ctx, fmt.Sprintf("product_data_%d", id)).Err(); err != nil {
		t.Fatalf("stored key product_data_%d should exist: %v", id, err)
	}

	// 删除请求体被忽略，驱逐以路径 id 为准
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d/", id),
		strings.NewReader(fmt.Sprintf(`{"id":%d}`, id)))
	req.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusNoContent {
		t.Fatalf("delete status want 204 got %d", w2.Code)
	}
	if summary, err := cache.GetProductSummary(ctx, id); err != nil || summary != nil {
		t.Fatalf("delete must evict cache, got %v %v", summary, err)
	}
}

func TestListIgnoresMalformedLimitAndOffset(t *testing.T) {
	r := setupServer(t)
	createTestProduct(t, r, productBody())

	w := doJSON(t, r, http.MethodGet, "/api/v1/products/?limit=abc&offset=-5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if len(resp["results"].([]any)) != 1 {
		t.Fatalf("results want 1 got %v", resp["results"])
	}
}

func TestSaleTimeRoundTripOnWire(t *testing.T) {
	r := setupServer(t)
	body := productBody()
	body["sale_start"] = "12:01 PM 16 April 2019"
	body["sale_end"] = "11:59 PM 31 December 2099"
	id := createTestProduct(t, r, body)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/", id), nil)
	resp := decodeBody(t, w)
	if resp["sale_start"] != "12:01 PM 16 April 2019" {
		t.Fatalf("sale_start round trip got %v", resp["sale_start"])
	}
}
