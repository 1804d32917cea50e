package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/finbook/internal/payment/domain"
)

func (s *Server) listPaymentMethods(c *gin.Context) {
	methods, err := s.paymentSvc.ListMethods(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

func (s *Server) createPaymentMethod(c *gin.Context) {
	var req paymentdomain.MethodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	method, err := s.paymentSvc.CreateMethod(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_method": method})
}

func (s *Server) getPaymentMethod(c *gin.Context) {
	method, err := s.paymentSvc.GetMethod(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_method": method})
}

func (s *Server) updatePaymentMethod(c *gin.Context) {
	var req paymentdomain.MethodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	method, err := s.paymentSvc.UpdateMethod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_method": method})
}

func (s *Server) deletePaymentMethod(c *gin.Context) {
	if err := s.paymentSvc.DeleteMethod(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) listCurrencies(c *gin.Context) {
	currencies, err := s.paymentSvc.ListCurrencies(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

func (s *Server) createCurrency(c *gin.Context) {
	var req paymentdomain.CurrencyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	currency, err := s.paymentSvc.CreateCurrency(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"currency": currency})
}

func (s *Server) deleteCurrency(c *gin.Context) {
	if err := s.paymentSvc.DeleteCurrency(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) listTransactions(c *gin.Context) {
	filter := paymentdomain.TransactionFilter{
		Type:     paymentdomain.TransactionType(c.Query("type")),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		AbortWithError(c, paymentdomain.ErrInvalidTransactionType)
		return
	}

	txns, err := s.paymentSvc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (s *Server) createTransaction(c *gin.Context) {
	var req paymentdomain.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	txn, err := s.paymentSvc.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

func (s *Server) getTransaction(c *gin.Context) {
	txn, err := s.paymentSvc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.paymentSvc.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
