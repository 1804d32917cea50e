package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	itemdomain "github.com/smallbiznis/finbook/internal/item/domain"
)

type itemRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	VATRate     float64 `json:"vat_amount"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

func (s *Server) listItems(c *gin.Context) {
	items, err := s.itemSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) createItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.Create(c.Request.Context(), itemdomain.CreateItemRequest{
		Name:        req.Name,
		Price:       req.Price,
		VATRate:     req.VATRate,
		Unit:        req.Unit,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (s *Server) getItem(c *gin.Context) {
	item, err := s.itemSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (s *Server) updateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.itemSvc.Update(c.Request.Context(), itemdomain.UpdateItemRequest{
		ID:          c.Param("id"),
		Name:        req.Name,
		Price:       req.Price,
		VATRate:     req.VATRate,
		Unit:        req.Unit,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (s *Server) deleteItem(c *gin.Context) {
	if err := s.itemSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
