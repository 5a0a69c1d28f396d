package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/retail-backoffice/internal/application/dto"
	"github.com/tu-usuario/retail-backoffice/internal/application/inventory"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del motor de inventario (protegido).
type InventoryHandler struct {
	stock      *inventory.StockUseCase
	depletion  *inventory.DepletionUseCase
	adjustment *inventory.AdjustmentUseCase
	reports    *inventory.ReportsUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	stock *inventory.StockUseCase,
	depletion *inventory.DepletionUseCase,
	adjustment *inventory.AdjustmentUseCase,
	reports *inventory.ReportsUseCase,
) *InventoryHandler {
	return &InventoryHandler{stock: stock, depletion: depletion, adjustment: adjustment, reports: reports}
}

// GetAggregate godoc
// @Summary      Agregado de stock de un producto (lo crea en cero si no existe)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryResponse
// @Router       /api/inventory/{productId} [get]
func (h *InventoryHandler) GetAggregate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	inv, err := h.stock.Ensure(c.Context(), companyID, c.Params("productId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toInventoryResponse(inv))
}

// Deplete godoc
// @Summary      Salida de stock FEFO (hook de venta)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DepleteStockRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/depletions [post]
func (h *InventoryHandler) Deplete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DepleteStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.depletion.Deplete(c.Context(), companyID, in.ProductID, in.Quantity)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toInventoryResponse(inv))
}

// Adjust godoc
// @Summary      Registrar ajuste manual de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, quantity (delta con signo), reason"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	adj, err := h.adjustment.RecordAdjustment(c.Context(), inventory.AdjustmentInputDTO{
		CompanyID: companyID,
		ProductID: in.ProductID,
		BatchID:   in.BatchID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Notes:     in.Notes,
		UserID:    userID,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustmentResponse{
		ID:        adj.ID,
		ProductID: adj.ProductID,
		BatchID:   adj.BatchID,
		Quantity:  adj.Quantity,
		Reason:    adj.Reason,
		Notes:     adj.Notes,
		CreatedAt: adj.CreatedAt,
		CreatedBy: adj.CreatedBy,
	})
}

// LowStock godoc
// @Summary      Agregados en o bajo su nivel de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InventoryResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.reports.ListLowStock(c.Context(), companyID)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.InventoryResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInventoryResponse(inv))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// ExpiredBatches godoc
// @Summary      Lotes vencidos con cantidad restante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockBatchResponse
// @Router       /api/inventory/expired-batches [get]
func (h *InventoryHandler) ExpiredBatches(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.reports.ListExpiredBatches(c.Context(), companyID)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.StockBatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBatchResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// AdjustmentHistory godoc
// @Summary      Historial de ajustes manuales de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de filas (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.AdjustmentResponse
// @Router       /api/inventory/{productId}/adjustments [get]
func (h *InventoryHandler) AdjustmentHistory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.reports.ListAdjustments(c.Context(), companyID, c.Params("productId"), page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.AdjustmentResponse, 0, len(list))
	for _, adj := range list {
		out = append(out, dto.AdjustmentResponse{
			ID:        adj.ID,
			ProductID: adj.ProductID,
			BatchID:   adj.BatchID,
			Quantity:  adj.Quantity,
			Reason:    adj.Reason,
			Notes:     adj.Notes,
			CreatedAt: adj.CreatedAt,
			CreatedBy: adj.CreatedBy,
		})
	}
	return c.JSON(fiber.Map{
		"data": out,
		"page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Reconciliation godoc
// @Summary      Conciliación agregado vs suma de lotes de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/inventory/{productId}/reconciliation [get]
func (h *InventoryHandler) Reconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	res, err := h.reports.Reconcile(c.Context(), companyID, c.Params("productId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:    res.ProductID,
		Aggregate:    res.Aggregate,
		BatchTotal:   res.BatchTotal,
		Drift:        res.Drift,
		BatchTracked: res.BatchTracked,
		Consistent:   res.Consistent,
	})
}

func toInventoryResponse(inv *entity.Inventory) dto.InventoryResponse {
	return dto.InventoryResponse{
		CompanyID:    inv.CompanyID,
		ProductID:    inv.ProductID,
		Quantity:     inv.Quantity,
		ReorderLevel: inv.ReorderLevel,
		MinStock:     inv.MinStock,
		MaxStock:     inv.MaxStock,
		IsActive:     inv.IsActive,
		UpdatedAt:    inv.UpdatedAt,
	}
}

func toBatchResponse(b *entity.StockBatch) dto.StockBatchResponse {
	return dto.StockBatchResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		SupplierID: b.SupplierID,
		BatchNo:    b.BatchNo,
		Quantity:   b.Quantity,
		ExpiryDate: b.ExpiryDate,
		UnitCost:   b.UnitCost,
		UnitPrice:  b.UnitPrice,
		ReceivedAt: b.ReceivedAt,
	}
}
