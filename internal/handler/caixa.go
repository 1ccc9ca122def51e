package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/apierror"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/service"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Open godoc
// @Summary Abre uma nova sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Param body body dto.OpenRegisterRequest true "Dados de abertura"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} apierror.APIError
// @Router /caixa/open [post]
func (h *CaixaHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Fecha a sessão de caixa e devolve o relatório
// @Tags caixa
// @Accept json
// @Produce json
// @Param id path string true "ID do caixa"
// @Param body body dto.CloseRegisterRequest true "Dados de fechamento"
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /caixa/{id}/close [post]
func (h *CaixaHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("ID inválido"))
		return
	}
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement godoc
// @Summary Registra um movimento no caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Param id path string true "ID do caixa"
// @Param body body dto.RecordMovementRequest true "Movimento"
// @Success 201 {object} dto.MovementResponse
// @Failure 409 {object} apierror.APIError
// @Router /caixa/{id}/movimentacao [post]
func (h *CaixaHandler) RecordMovement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("ID inválido"))
		return
	}
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SettleOrder godoc
// @Summary Liquida um pedido pendente dentro do caixa
// @Tags caixa
// @Produce json
// @Param id path string true "ID do caixa"
// @Param orderId path string true "ID do pedido"
// @Success 201 {object} dto.MovementResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /caixa/{id}/pedido/{orderId}/movimentacao [post]
func (h *CaixaHandler) SettleOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("ID inválido"))
		return
	}
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("orderId inválido"))
		return
	}
	resp, err := h.svc.SettleOrder(c.Request.Context(), id, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Status godoc
// @Summary Devolve o caixa aberto no momento, se houver
// @Tags caixa
// @Produce json
// @Success 200 {object} dto.RegisterResponse
// @Success 204
// @Router /caixa/status [get]
func (h *CaixaHandler) Status(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Relatório da sessão: movimentos e totais derivados
// @Tags caixa
// @Produce json
// @Param id path string true "ID do caixa"
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /caixa/{id}/report [get]
func (h *CaixaHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("ID inválido"))
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of register sessions, newest first.
func (h *CaixaHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
