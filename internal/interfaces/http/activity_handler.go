package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/ledger"
)

// ActivityHandler lectura de actividades de proyecto.
type ActivityHandler struct {
	svc *ledger.Service
}

func NewActivityHandler(svc *ledger.Service) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// List godoc
// @Summary      Actividades de proyecto
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Param        project_id  query  string  false  "filtrar por proyecto"
// @Param        page        query  int     false  "página (1..)"
// @Param        page_size   query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.ActivityListResponse
// @Router       /api/project-activities [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	res, err := h.svc.ListActivities(c.UserContext(), c.Query("project_id"),
		c.QueryInt("page", 1), c.QueryInt("page_size", 10))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ActivityListResponse{Activities: dto.ActivitiesFromViews(res.Activities), Total: res.Total})
}

// Latest godoc
// @Summary      Últimas actividades
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProjectActivityResponse
// @Router       /api/project-activities/latest [get]
func (h *ActivityHandler) Latest(c *fiber.Ctx) error {
	list, err := h.svc.LatestActivities(c.UserContext(), 10)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ActivitiesFromViews(list))
}
