package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/ledger"
)

// InventoryHandler maneja entradas, salidas y consultas del libro de inventario (protegido).
type InventoryHandler struct {
	svc *ledger.Service
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *ledger.Service) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// StockIn godoc
// @Summary      Registrar entrada de material
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del material"
// @Param        body  body  dto.StockInRequest  true  "quantity, description"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id}/stock-in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.StockIn(c.UserContext(), ledger.StockInInput{
		MaterialID:  c.Params("id"),
		OperatorID:  userID,
		Quantity:    in.Quantity,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{
		Material: dto.MaterialFromEntity(res.Material),
		RecordID: res.Record.ID,
	})
}

// StockOut godoc
// @Summary      Registrar salida de material hacia un proyecto
// @Description  El usuario debe ser responsable de inventario del proyecto. Genera una actividad de proyecto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del material"
// @Param        body  body  dto.StockOutRequest  true  "quantity, project_id, description"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id}/stock-out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.StockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.StockOut(c.UserContext(), ledger.StockOutInput{
		MaterialID:  c.Params("id"),
		OperatorID:  userID,
		ProjectID:   in.ProjectID,
		Quantity:    in.Quantity,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{
		Material:   dto.MaterialFromEntity(res.Material),
		RecordID:   res.Record.ID,
		ActivityID: res.Activity.ID,
	})
}

// ListRecords godoc
// @Summary      Libro de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  false  "filtrar por material"
// @Param        page         query  int     false  "página (1..)"
// @Param        page_size    query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.RecordListResponse
// @Router       /api/inventory/records [get]
func (h *InventoryHandler) ListRecords(c *fiber.Ctx) error {
	res, err := h.svc.ListMovements(c.UserContext(), c.Query("material_id"),
		c.QueryInt("page", 1), c.QueryInt("page_size", 10))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecordListResponse{Records: dto.RecordsFromViews(res.Records), Total: res.Total})
}

// ManagerProjects godoc
// @Summary      Proyectos asignados al responsable de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CustodianProjectResponse
// @Router       /api/inventory/manager-projects [get]
func (h *InventoryHandler) ManagerProjects(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	list, err := h.svc.CustodianProjects(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.CustodianProjectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.CustodianProjectResponse(p))
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Resumen del responsable de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	st, err := h.svc.Stats(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StatsResponse{
		ProjectCount:  st.ProjectCount,
		StockInCount:  st.StockInCount,
		StockOutCount: st.StockOutCount,
		LowStockCount: len(st.LowStock),
		LowStock:      dto.MaterialsFromEntities(st.LowStock),
	})
}
