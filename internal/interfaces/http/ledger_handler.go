package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/validator"
)

// LedgerHandler maneja las peticiones HTTP del ledger de stock (protegido).
type LedgerHandler struct {
	record   *ledger.RecordMovementUseCase
	transfer *ledger.TransferUseCase
	query    *ledger.QueryUseCase
	rebuild  *ledger.RebuildUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	record *ledger.RecordMovementUseCase,
	transfer *ledger.TransferUseCase,
	query *ledger.QueryUseCase,
	rebuild *ledger.RebuildUseCase,
) *LedgerHandler {
	return &LedgerHandler{record: record, transfer: transfer, query: query, rebuild: rebuild}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, location_id, type (RECEIPT|ISSUE|RETURN|ADJUSTMENT), quantity; batch_id opcional"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *LedgerHandler) RegisterMovement(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo requerido: " + errs[0].FailedField})
	}
	input := ledger.MovementInputDTO{
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		BatchID:    in.BatchID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		Actor:      actor,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Remarks:    in.Remarks,
	}
	if in.OccurredAt != nil {
		input.OccurredAt = *in.OccurredAt
	}
	movementID, err := h.record.RecordMovement(c.Context(), input)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement_id": movementID})
}

// RecordTransfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Registra el par TRANSFER_OUT / TRANSFER_IN de forma atómica.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "item_id, from_location_id, to_location_id, quantity; batch_id e idempotency_key opcionales"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *LedgerHandler) RecordTransfer(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo requerido: " + errs[0].FailedField})
	}
	transferID, err := h.transfer.Transfer(c.Context(), ledger.TransferInputDTO{
		ItemID:         in.ItemID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		BatchID:        in.BatchID,
		Quantity:       in.Quantity,
		Actor:          actor,
		Remarks:        in.Remarks,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transfer_id": transferID})
}

// GetBalance godoc
// @Summary      Saldo actual de una clave (artículo, ubicación, lote)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true   "Artículo"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        batch_id     query  string  false  "Lote (vacío = sin lote)"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/balance [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	locationID := c.Query("location_id")
	if itemID == "" || locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id y location_id son requeridos"})
	}
	batchID := c.Query("batch_id")
	qty, err := h.query.GetBalance(c.Context(), itemID, locationID, batchID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.BalanceResponse{
		ItemID:     itemID,
		LocationID: locationID,
		BatchID:    batchID,
		Quantity:   qty,
	})
}

// ListBalances godoc
// @Summary      Listar saldos (filtros opcionales por artículo y ubicación)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por artículo"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Success      200  {object}  dto.BalanceListResponse
// @Router       /api/stock/balances [get]
func (h *LedgerHandler) ListBalances(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.query.ListBalances(c.Context(), repository.BalanceFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
	}, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	items := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		items = append(items, dto.BalanceResponse{
			ItemID:     b.ItemID,
			LocationID: b.LocationID,
			BatchID:    b.BatchID,
			Quantity:   b.Quantity,
			UpdatedAt:  b.UpdatedAt,
		})
	}
	return c.JSON(dto.BalanceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ListMovements godoc
// @Summary      Historial del ledger (auditoría)
// @Description  Orden por fecha ascendente, desempate por secuencia de inserción.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por artículo"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        batch_id     query  string  false  "Filtrar por lote"
// @Param        type         query  string  false  "Filtrar por tipo de movimiento"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		BatchID:    c.Query("batch_id"),
		Type:       c.Query("type"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		filter.To = &t
	}
	list, err := h.query.ListMovements(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// RebuildBalances godoc
// @Summary      Reconstruir saldos desde el historial (reparación/auditoría)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RebuildRequest  false  "item_id y location_id opcionales (vacíos = todo)"
// @Success      200   {object}  map[string]string
// @Router       /api/stock/balances/rebuild [post]
func (h *LedgerHandler) RebuildBalances(c *fiber.Ctx) error {
	var in dto.RebuildRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if err := h.rebuild.Rebuild(c.Context(), in.ItemID, in.LocationID); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "saldos reconstruidos"})
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		TransferID: m.TransferID,
		ItemID:     m.ItemID,
		LocationID: m.LocationID,
		BatchID:    m.BatchID,
		Type:       m.Type,
		Quantity:   m.Quantity,
		Actor:      m.Actor,
		OccurredAt: m.OccurredAt,
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		Remarks:    m.Remarks,
	}
}
