package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/ledger"
)

// ProjectHandler administración de responsables de inventario por proyecto.
type ProjectHandler struct {
	svc *ledger.Service
}

func NewProjectHandler(svc *ledger.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// AssignInventoryManagers godoc
// @Summary      Asignar responsables de inventario a un proyecto
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del proyecto"
// @Param        body  body  dto.AssignCustodiansRequest  true  "inventory_manager_ids"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/inventory-managers [put]
func (h *ProjectHandler) AssignInventoryManagers(c *fiber.Ctx) error {
	var in dto.AssignCustodiansRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.svc.AssignCustodians(c.UserContext(), c.Params("id"), in.InventoryManagerIDs); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "responsables asignados"})
}
