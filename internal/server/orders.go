package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	orderdomain "github.com/foodcourtlabs/foodcourt/internal/order/domain"
)

type submitOrderRequest struct {
	Customer struct {
		Email   string `json:"email" binding:"required"`
		Name    string `json:"name" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
		Address string `json:"address"`
	} `json:"customer" binding:"required"`
	Items           []orderdomain.Item `json:"items" binding:"required,min=1,dive"`
	Total           float64            `json:"total" binding:"required"`
	Currency        string             `json:"currency"`
	DeliveryAddress string             `json:"delivery_address" binding:"required"`
	DeliveryNotes   string             `json:"delivery_notes"`
}

// SubmitOrder
// POST /api/orders
func (s *Server) SubmitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "malformed order payload")
		return
	}

	order, err := s.orderSvc.Submit(c.Request.Context(), orderdomain.SubmitOrderRequest{
		Customer: orderdomain.CustomerInput{
			Email:   req.Customer.Email,
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Items:           req.Items,
		Total:           req.Total,
		Currency:        req.Currency,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryNotes:   req.DeliveryNotes,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder
// GET /api/orders/:id
func (s *Server) GetOrder(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		invalidRequest(c, "invalid order id")
		return
	}

	order, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListOrders returns a customer's order history, newest first.
// GET /api/orders?email=...
func (s *Server) ListOrders(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		invalidRequest(c, "email query parameter is required")
		return
	}

	orders, err := s.orderSvc.ListByEmail(c.Request.Context(), email)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus applies an operational status change, subject to the
// order state machine.
// PATCH /api/orders/:id/status
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		invalidRequest(c, "invalid order id")
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "malformed status payload")
		return
	}

	order, err := s.orderSvc.UpdateStatus(c.Request.Context(), id, orderdomain.Status(req.Status))
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
