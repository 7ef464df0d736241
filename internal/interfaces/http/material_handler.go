package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/ledger"
)

// MaterialHandler maneja el catálogo de materiales (protegido, inventory_manager).
type MaterialHandler struct {
	svc *ledger.Service
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(svc *ledger.Service) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// List godoc
// @Summary      Listar materiales
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "código, nombre o proveedor"
// @Param        page       query  int     false  "página (1..)"
// @Param        page_size  query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.MaterialListResponse
// @Router       /api/inventory/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	res, err := h.svc.ListMaterials(c.UserContext(), c.Query("search"),
		c.QueryInt("page", 1), c.QueryInt("page_size", 10))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterialListResponse{
		Materials: dto.MaterialsFromEntities(res.Materials),
		Total:     res.Total,
		Page:      res.Page,
		PageSize:  res.PageSize,
	})
}

// GetByID godoc
// @Summary      Obtener material
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.svc.GetMaterial(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterialFromEntity(m))
}

// Create godoc
// @Summary      Crear material
// @Description  Si quantity > 0 se registra una entrada inicial en el libro atribuida al usuario del token.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "material"
// @Success      201  {object}  dto.MaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.svc.CreateMaterial(c.UserContext(), ledger.CreateMaterialInput{
		OperatorID: userID,
		Code:       in.Code,
		Name:       in.Name,
		Quantity:   in.Quantity,
		Supplier:   in.Supplier,
		UnitPrice:  in.UnitPrice,
		Unit:       in.Unit,
		Location:   in.Location,
		ImageURL:   in.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MaterialFromEntity(m))
}

// Update godoc
// @Summary      Actualizar material
// @Description  Solo campos descriptivos; la cantidad cambia únicamente con entradas y salidas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del material"
// @Param        body  body  dto.UpdateMaterialRequest  true  "material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.svc.UpdateMaterial(c.UserContext(), ledger.UpdateMaterialInput{
		ID:        c.Params("id"),
		Code:      in.Code,
		Name:      in.Name,
		Supplier:  in.Supplier,
		UnitPrice: in.UnitPrice,
		Unit:      in.Unit,
		Location:  in.Location,
		ImageURL:  in.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterialFromEntity(m))
}

// Delete godoc
// @Summary      Eliminar material
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.DeleteMaterial(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "material eliminado"})
}
