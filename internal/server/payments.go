package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
)

// SubmitCardPayment starts a card-network payment. The response carries the
// provider intent reference and client secret; the order stays pending until
// the provider webhook settles it.
// POST /api/orders/:id/payments/card
func (s *Server) SubmitCardPayment(c *gin.Context) {
	s.submitPayment(c, paymentdomain.MethodCardNetwork, paymentdomain.PaymentDetails{})
}

type simulatedCardRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	ExpMonth   int    `json:"exp_month" binding:"required"`
	ExpYear    int    `json:"exp_year" binding:"required"`
	CVC        string `json:"cvc" binding:"required"`
}

// SubmitSimulatedCardPayment
// POST /api/orders/:id/payments/simulated-card
func (s *Server) SubmitSimulatedCardPayment(c *gin.Context) {
	var req simulatedCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "malformed card payload")
		return
	}
	s.submitPayment(c, paymentdomain.MethodSimulatedCard, paymentdomain.PaymentDetails{
		CardNumber: req.CardNumber,
		ExpMonth:   req.ExpMonth,
		ExpYear:    req.ExpYear,
		CVC:        req.CVC,
	})
}

type bankTransferRequest struct {
	Phone      string `json:"phone" binding:"required"`
	NationalID string `json:"national_id" binding:"required"`
	BankName   string `json:"bank_name" binding:"required"`
	Reference  string `json:"reference" binding:"required"`
}

// SubmitBankTransferPayment
// POST /api/orders/:id/payments/bank-transfer
func (s *Server) SubmitBankTransferPayment(c *gin.Context) {
	var req bankTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "malformed transfer payload")
		return
	}
	s.submitPayment(c, paymentdomain.MethodBankTransfer, paymentdomain.PaymentDetails{
		Phone:      req.Phone,
		NationalID: req.NationalID,
		BankName:   req.BankName,
		Reference:  req.Reference,
	})
}

func (s *Server) submitPayment(c *gin.Context, method paymentdomain.Method, details paymentdomain.PaymentDetails) {
	orderID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		invalidRequest(c, "invalid order id")
		return
	}

	txn, err := s.paymentSvc.SubmitPayment(c.Request.Context(), paymentdomain.SubmitPaymentRequest{
		OrderID: orderID,
		Method:  method,
		Details: details,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// GetTransaction
// GET /api/transactions/:id
func (s *Server) GetTransaction(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		invalidRequest(c, "invalid transaction id")
		return
	}

	txn, err := s.paymentSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

type verifyTransferRequest struct {
	Verified      *bool  `json:"verified" binding:"required"`
	BankReference string `json:"bank_reference"`
}

// VerifyTransfer records the manual bank-side verification outcome for a
// pending transfer.
// POST /api/payments/transfers/:id/verify
func (s *Server) VerifyTransfer(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		invalidRequest(c, "invalid transaction id")
		return
	}

	var req verifyTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "malformed verification payload")
		return
	}

	txn, err := s.paymentSvc.VerifyTransfer(c.Request.Context(), paymentdomain.VerifyTransferRequest{
		TransactionID: id,
		Verified:      *req.Verified,
		BankReference: req.BankReference,
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}
