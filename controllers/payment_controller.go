package controllers

import (
	"math"
	"net/http"

	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

type intentRequest struct {
	Amount float64 `json:"amount"`
}

func (h *PaymentController) CreatePaymentIntent(c *gin.Context) {
	var req intentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	amount := int64(math.Round(req.Amount))
	secret, err := h.Payments.CreateIntent(c.Request.Context(), amount)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "amount": amount, "clientSecret": secret})
}

func (h *PaymentController) RecordPayment(c *gin.Context) {
	var in services.PaymentInput
	if !bindJSON(c, &in) {
		return
	}
	in.UserEmail = orIdentity(c, in.UserEmail)
	p, err := h.Payments.Record(c.Request.Context(), in)
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insertedId": p.ID})
}

func (h *PaymentController) PaymentsByUser(c *gin.Context) {
	payments, err := h.Payments.ListByUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		middlewares.Fail(c, err)
		return
	}
	if len(payments) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No payments found for the specified email.", "data": payments})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}
