package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	discountapp "github.com/storefront/backend/internal/application/discount"
)

// DiscountHandler handles discount rule and change log HTTP requests
type DiscountHandler struct {
	BaseHandler
	engineService    *discountapp.EngineService
	changeLogService *discountapp.ChangeLogService
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(
	engineService *discountapp.EngineService,
	changeLogService *discountapp.ChangeLogService,
) *DiscountHandler {
	return &DiscountHandler{
		engineService:    engineService,
		changeLogService: changeLogService,
	}
}

// RegisterRoutes registers discount routes
func (h *DiscountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/discount-rules")
	{
		rules.POST("", h.Create)
		rules.GET("", h.List)
		rules.GET("/:id", h.GetByID)
		rules.DELETE("/:id", h.Delete)
		rules.POST("/preview", h.Preview)
		rules.POST("/apply-filtered", h.ApplyFiltered)
		rules.POST("/recompute", h.Recompute)
	}

	rg.GET("/change-log", h.ChangeLog)
}

// CreateRuleResult bundles the created rule with the recomputation it triggered
type CreateRuleResult struct {
	Rule      discountapp.RuleResponse     `json:"rule"`
	Recompute *discountapp.RecomputeResult `json:"recompute,omitempty"`
}

// Create handles POST /discount-rules
func (h *DiscountHandler) Create(c *gin.Context) {
	var req discountapp.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = getActor(c)

	rule, recompute, err := h.engineService.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, CreateRuleResult{Rule: *rule, Recompute: recompute})
}

// List handles GET /discount-rules
func (h *DiscountHandler) List(c *gin.Context) {
	rules, err := h.engineService.ListRules(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rules)
}

// GetByID handles GET /discount-rules/:id
func (h *DiscountHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, err := h.engineService.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// Delete handles DELETE /discount-rules/:id. The rule is deactivated rather
// than removed, and remaining rules are replayed to settle pricing.
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, recompute, err := h.engineService.RemoveRule(c.Request.Context(), id, getActor(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CreateRuleResult{Rule: *rule, Recompute: recompute})
}

// Preview handles POST /discount-rules/preview
func (h *DiscountHandler) Preview(c *gin.Context) {
	var req discountapp.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.engineService.PreviewFilter(req.Conditions)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, preview)
}

// ApplyFiltered handles POST /discount-rules/apply-filtered
func (h *DiscountHandler) ApplyFiltered(c *gin.Context) {
	var req discountapp.ApplyFilteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Actor = getActor(c)

	result, err := h.engineService.ApplyWithFilter(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Recompute handles POST /discount-rules/recompute
func (h *DiscountHandler) Recompute(c *gin.Context) {
	result, err := h.engineService.RecomputeAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ChangeLog handles GET /change-log
func (h *DiscountHandler) ChangeLog(c *gin.Context) {
	var query discountapp.ChangeLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	entries, err := h.changeLogService.Query(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}
