package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/apierror"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/service"
)

type OrderHandler struct{ svc service.OrderService }

func NewOrderHandler(svc service.OrderService) *OrderHandler { return &OrderHandler{svc: svc} }

// List godoc
// @Summary Lista todos os pedidos com posição reconciliada
// @Tags pedidos
// @Produce json
// @Success 200 {array} dto.OrderResponse
// @Router /pedidos [get]
func (h *OrderHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPending godoc
// @Summary Lista pedidos aguardando liquidação
// @Tags pedidos
// @Produce json
// @Success 200 {array} dto.OrderResponse
// @Router /pedidos/pendentes [get]
func (h *OrderHandler) ListPending(c *gin.Context) {
	resp, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CapturePayment godoc
// @Summary Registra um pagamento capturado e reconcilia o pedido
// @Tags pagamentos
// @Accept json
// @Produce json
// @Param orderId path string true "ID do pedido"
// @Param body body dto.CapturePaymentRequest true "Pagamento"
// @Success 201 {object} dto.PaymentResponse
// @Failure 404 {object} apierror.APIError
// @Router /pagamentos/{orderId} [post]
func (h *OrderHandler) CapturePayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("orderId inválido"))
		return
	}
	var req dto.CapturePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CapturePayment(c.Request.Context(), orderID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
