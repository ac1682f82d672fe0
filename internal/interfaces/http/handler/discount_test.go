package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	discountapp "github.com/storefront/backend/internal/application/discount"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
)

// fakeRuleRepo is an in-memory discount.RuleRepository preserving creation order
type fakeRuleRepo struct {
	rules   []*discount.Rule
	version int64
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule *discount.Rule) error {
	r.rules = append(r.rules, rule)
	r.version++
	return nil
}

func (r *fakeRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*discount.Rule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRuleRepo) ListActive(ctx context.Context) ([]discount.Rule, error) {
	out := make([]discount.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.Active {
			out = append(out, rule.Snapshot())
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) Deactivate(ctx context.Context, id uuid.UUID) (*discount.Rule, error) {
	for _, rule := range r.rules {
		if rule.ID == id && rule.Active {
			prior := rule.Snapshot()
			rule.Active = false
			r.version++
			return &prior, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRuleRepo) Version(ctx context.Context) (int64, error) {
	return r.version, nil
}

// fakeChangeLogRepo is an in-memory discount.ChangeLogRepository
type fakeChangeLogRepo struct {
	entries []discount.ChangeLogEntry
}

func (r *fakeChangeLogRepo) Append(ctx context.Context, entry *discount.ChangeLogEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeChangeLogRepo) Find(ctx context.Context, filter discount.ChangeLogFilter) ([]discount.ChangeLogEntry, error) {
	out := make([]discount.ChangeLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// fakeProductRepo is an empty-catalog catalog.ProductRepository; bulk
// operations succeed and touch nothing
type fakeProductRepo struct{}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindDiscounted(ctx context.Context, limit int) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindActiveIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindActiveIDsBySubcategory(ctx context.Context, subcategoryID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *fakeProductRepo) BulkUpdateDiscount(ctx context.Context, ids []uuid.UUID, percentage int) (int64, error) {
	return int64(len(ids)), nil
}

func (r *fakeProductRepo) ResetActiveDiscounts(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *fakeProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return shared.ErrNotFound
}

func (r *fakeProductRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

// fakeCategoryRepo is an empty-catalog catalog.CategoryRepository
type fakeCategoryRepo struct{}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) Save(ctx context.Context, category *catalog.Category) error {
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return shared.ErrNotFound
}

func (r *fakeCategoryRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

// fakeSubcategoryRepo is an empty-catalog catalog.SubcategoryRepository
type fakeSubcategoryRepo struct{}

func (r *fakeSubcategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subcategory, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeSubcategoryRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Subcategory, error) {
	return nil, nil
}

func (r *fakeSubcategoryRepo) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Subcategory, error) {
	return nil, nil
}

func (r *fakeSubcategoryRepo) Save(ctx context.Context, subcategory *catalog.Subcategory) error {
	return nil
}

func (r *fakeSubcategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return shared.ErrNotFound
}

func (r *fakeSubcategoryRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupDiscountHandler() (*DiscountHandler, *fakeRuleRepo, *fakeChangeLogRepo) {
	ruleRepo := &fakeRuleRepo{}
	changeLogRepo := &fakeChangeLogRepo{}
	engineService := discountapp.NewEngineService(
		ruleRepo,
		&fakeProductRepo{},
		&fakeCategoryRepo{},
		&fakeSubcategoryRepo{},
		changeLogRepo,
	)
	changeLogService := discountapp.NewChangeLogService(changeLogRepo)
	return NewDiscountHandler(engineService, changeLogService), ruleRepo, changeLogRepo
}

func TestDiscountHandler_Create_Success(t *testing.T) {
	handler, ruleRepo, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.POST("/discount-rules", handler.Create)

	body, _ := json.Marshal(discountapp.CreateRuleRequest{
		Scope:      "all_products",
		Percentage: 20,
	})

	req := httptest.NewRequest(http.MethodPost, "/discount-rules", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, ruleRepo.rules, 1)

	var resp struct {
		Success bool             `json:"success"`
		Data    CreateRuleResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "all_products", resp.Data.Rule.Scope)
	assert.Equal(t, 20, resp.Data.Rule.Percentage)
	require.NotNil(t, resp.Data.Recompute)
	assert.Equal(t, int64(1), resp.Data.Recompute.RuleSetVersion)
}

func TestDiscountHandler_Create_InvalidPercentage(t *testing.T) {
	handler, ruleRepo, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.POST("/discount-rules", handler.Create)

	body, _ := json.Marshal(discountapp.CreateRuleRequest{
		Scope:      "all_products",
		Percentage: 150,
	})

	req := httptest.NewRequest(http.MethodPost, "/discount-rules", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ruleRepo.rules)
}

func TestDiscountHandler_Create_MissingTarget(t *testing.T) {
	handler, _, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.POST("/discount-rules", handler.Create)

	targetID := uuid.New()
	body, _ := json.Marshal(discountapp.CreateRuleRequest{
		Scope:      "category",
		TargetID:   &targetID,
		Percentage: 10,
	})

	req := httptest.NewRequest(http.MethodPost, "/discount-rules", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiscountHandler_List_Success(t *testing.T) {
	handler, ruleRepo, _ := setupDiscountHandler()

	rule, err := discount.NewRule(discount.ScopeAllProducts, nil, 15, nil)
	require.NoError(t, err)
	require.NoError(t, ruleRepo.Create(context.Background(), rule))

	router := setupTestRouter()
	router.GET("/discount-rules", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/discount-rules", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []discountapp.RuleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, rule.ID, resp.Data[0].ID)
}

func TestDiscountHandler_GetByID_InvalidID(t *testing.T) {
	handler, _, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.GET("/discount-rules/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/discount-rules/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscountHandler_Delete_Success(t *testing.T) {
	handler, ruleRepo, _ := setupDiscountHandler()

	rule, err := discount.NewRule(discount.ScopeAllProducts, nil, 15, nil)
	require.NoError(t, err)
	require.NoError(t, ruleRepo.Create(context.Background(), rule))

	router := setupTestRouter()
	router.DELETE("/discount-rules/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/discount-rules/"+rule.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, ruleRepo.rules[0].Active)
}

func TestDiscountHandler_Delete_NotFound(t *testing.T) {
	handler, _, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.DELETE("/discount-rules/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/discount-rules/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiscountHandler_Preview_Success(t *testing.T) {
	handler, _, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.POST("/discount-rules/preview", handler.Preview)

	body, _ := json.Marshal(discountapp.PreviewRequest{
		Conditions: []discount.Condition{
			{Field: "name", Operator: discount.OperatorContains, Value: "shirt"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/discount-rules/preview", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data discountapp.PreviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data.Preview, "name")
	assert.Contains(t, resp.Data.Preview, "shirt")
}

func TestDiscountHandler_Preview_UnknownField(t *testing.T) {
	handler, _, _ := setupDiscountHandler()

	router := setupTestRouter()
	router.POST("/discount-rules/preview", handler.Preview)

	body, _ := json.Marshal(discountapp.PreviewRequest{
		Conditions: []discount.Condition{
			{Field: "warehouse", Operator: discount.OperatorEquals, Value: "east"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/discount-rules/preview", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscountHandler_Recompute_Success(t *testing.T) {
	handler, _, changeLogRepo := setupDiscountHandler()

	router := setupTestRouter()
	router.POST("/discount-rules/recompute", handler.Recompute)

	req := httptest.NewRequest(http.MethodPost, "/discount-rules/recompute", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, changeLogRepo.entries)
}

func TestDiscountHandler_ChangeLog_FiltersByEntityType(t *testing.T) {
	handler, _, changeLogRepo := setupDiscountHandler()

	ctx := context.Background()
	require.NoError(t, changeLogRepo.Append(ctx, discount.NewChangeLogEntry(
		discount.EntityTypeRule, discount.ActionRuleCreated, nil)))
	require.NoError(t, changeLogRepo.Append(ctx, discount.NewChangeLogEntry(
		discount.EntityTypeProduct, discount.ActionRecomputed, nil)))

	router := setupTestRouter()
	router.GET("/change-log", handler.ChangeLog)

	req := httptest.NewRequest(http.MethodGet, "/change-log?entity_type="+discount.EntityTypeRule, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []discountapp.ChangeLogEntryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, discount.EntityTypeRule, resp.Data[0].EntityType)
}
