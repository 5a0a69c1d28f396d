package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/retail-backoffice/internal/application/dto"
	"github.com/tu-usuario/retail-backoffice/internal/application/purchasing"
	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// PurchaseHandler maneja las peticiones HTTP de órdenes de compra (protegido).
type PurchaseHandler struct {
	orders  *purchasing.OrderUseCase
	receive *purchasing.ReceiveUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(orders *purchasing.OrderUseCase, receive *purchasing.ReceiveUseCase) *PurchaseHandler {
	return &PurchaseHandler{orders: orders, receive: receive}
}

// Create godoc
// @Summary      Crear orden de compra (estado ordered, consecutivo por empresa)
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "supplier_id, items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := purchasing.CreateOrderInputDTO{
		CompanyID:  companyID,
		UserID:     userID,
		SupplierID: in.SupplierID,
		Notes:      in.Notes,
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, purchasing.OrderItemInputDTO{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
		})
	}
	order, err := h.orders.Create(c.Context(), input)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// GetByID godoc
// @Summary      Consultar orden de compra con sus líneas
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	order, err := h.orders.GetByID(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes de compra de la empresa
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Máximo de filas (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/purchase-orders [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	orders, err := h.orders.List(c.Context(), companyID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return c.JSON(fiber.Map{
		"data": out,
		"page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Receive godoc
// @Summary      Recibir lotes contra una orden de compra (transaccional)
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveOrderRequest  true  "batches"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batches := make([]purchasing.BatchDeclarationDTO, 0, len(in.Batches))
	for _, b := range in.Batches {
		batches = append(batches, purchasing.BatchDeclarationDTO{
			ProductID:  b.ProductID,
			BatchNo:    b.BatchNo,
			ExpiryDate: b.ExpiryDate,
			Quantity:   b.Quantity,
			UnitCost:   b.UnitCost,
			UnitPrice:  b.UnitPrice,
		})
	}
	order, err := h.receive.Receive(c.Context(), companyID, c.Params("id"), batches)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Cancel godoc
// @Summary      Cancelar una orden de compra no terminal
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	order, err := h.orders.Cancel(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

func toOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		OrderNo:    o.OrderNo,
		Status:     o.Status,
		Notes:      o.Notes,
		OrderedAt:  o.OrderedAt,
		ReceivedAt: o.ReceivedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			ReceivedQty: it.ReceivedQty,
			UnitCost:    it.UnitCost,
		})
	}
	return resp
}
