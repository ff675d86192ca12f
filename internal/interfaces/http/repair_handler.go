package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/ledger"
	"github.com/jhoicas/Taller-api/internal/application/usecase"
)

// RepairHandler maneja las órdenes de reparación y sus líneas de repuestos (protegido).
type RepairHandler struct {
	repairs *usecase.RepairUseCase
	ledger  *ledger.RepairLedgerUseCase
}

// NewRepairHandler construye el handler.
func NewRepairHandler(repairs *usecase.RepairUseCase, ledgerUC *ledger.RepairLedgerUseCase) *RepairHandler {
	return &RepairHandler{repairs: repairs, ledger: ledgerUC}
}

// Create godoc
// @Summary      Abrir orden de reparación
// @Tags         repairs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRepairRequest  true  "Vehículo, cliente y datos iniciales"
// @Success      201   {object}  dto.RepairResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/repairs [post]
func (h *RepairHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRepairRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.repairs.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden con sus repuestos
// @Tags         repairs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.RepairDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/repairs/{id} [get]
func (h *RepairHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.repairs.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden de reparación no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes de reparación
// @Tags         repairs
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | in_progress | completed | cancelled"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.RepairListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/repairs [get]
func (h *RepairHandler) List(c *fiber.Ctx) error {
	out, err := h.repairs.List(c.UserContext(), c.Query("status"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar orden de reparación (parcial)
// @Description  Campos permitidos: status, technician_id, start_date, end_date, description,
//
//	estimated_cost, labor_cost. El total se recalcula con las líneas vigentes.
//
// @Tags         repairs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la orden"
// @Param        body  body  dto.UpdateRepairRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.RepairResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/repairs/{id} [patch]
func (h *RepairHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateRepairRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.UpdateRepairFromRequest(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListParts godoc
// @Summary      Repuestos de una orden
// @Tags         repairs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}   dto.RepairPartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/repairs/{id}/parts [get]
func (h *RepairHandler) ListParts(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.repairs.ListParts(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AttachPart godoc
// @Summary      Agregar repuesto a una orden
// @Description  Congela el precio vigente del repuesto, descuenta stock y recalcula totales.
// @Tags         repairs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la orden"
// @Param        body  body  dto.AttachPartRequest  true  "part_id, quantity"
// @Success      200   {object}  dto.RepairPartResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/repairs/{id}/parts [post]
func (h *RepairHandler) AttachPart(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AttachPartRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.ledger.AttachPartFromRequest(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DetachPart godoc
// @Summary      Quitar repuesto de una orden
// @Description  Borra la línea, devuelve la cantidad al stock y recalcula totales.
// @Tags         repairs
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la orden"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      200     {object}  dto.MessageResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/repairs/{id}/parts/{lineId} [delete]
func (h *RepairHandler) DetachPart(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	lineID, err := pathID(c, "lineId")
	if err != nil {
		return writeError(c, err)
	}
	err = h.ledger.DetachPart(c.UserContext(), ledger.DetachPartInput{
		RepairID: id,
		LineID:   lineID,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "repuesto quitado de la orden"})
}
