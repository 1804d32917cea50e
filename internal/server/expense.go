package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	expensedomain "github.com/smallbiznis/finbook/internal/expense/domain"
)

type expenseRequest struct {
	Date            string  `json:"date"`
	Title           string  `json:"title"`
	Category        string  `json:"category"`
	PaymentMethodID string  `json:"payment_method_id"`
	Amount          float64 `json:"amount"`
	Notes           string  `json:"notes"`
}

func (r expenseRequest) input() expensedomain.ExpenseInput {
	return expensedomain.ExpenseInput{
		Date:            r.Date,
		Title:           r.Title,
		Category:        r.Category,
		PaymentMethodID: r.PaymentMethodID,
		Amount:          r.Amount,
		Notes:           r.Notes,
	}
}

func (s *Server) listExpenses(c *gin.Context) {
	expenses, err := s.expenseSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (s *Server) createExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expense, err := s.expenseSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

func (s *Server) getExpense(c *gin.Context) {
	expense, err := s.expenseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

func (s *Server) updateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expense, err := s.expenseSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

func (s *Server) deleteExpense(c *gin.Context) {
	if err := s.expenseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
