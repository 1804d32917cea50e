package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/finbook/internal/document/domain"
)

type documentLineRequest struct {
	ItemID   string  `json:"item_id"`
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	VATRate  float64 `json:"vat_amount"`
}

type documentRequest struct {
	Number   string                        `json:"number"`
	Date     string                        `json:"date"`
	PartyID  string                        `json:"party_id"`
	Snapshot *documentdomain.PartySnapshot `json:"party"`
	Lines    []documentLineRequest         `json:"lines"`
}

func (r documentRequest) lineInputs() []documentdomain.LineInput {
	if r.Lines == nil {
		return nil
	}
	lines := make([]documentdomain.LineInput, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, documentdomain.LineInput{
			ItemID:   line.ItemID,
			ItemName: line.ItemName,
			Quantity: line.Quantity,
			Unit:     line.Unit,
			Price:    line.Price,
			VATRate:  line.VATRate,
		})
	}
	return lines
}

// registerDocumentRoutes wires one document family (invoices or
// purchases) under its own path segment.
func (s *Server) registerDocumentRoutes(api *gin.RouterGroup, path string, kind documentdomain.Kind) {
	api.GET("/"+path, func(c *gin.Context) {
		docs, err := s.documentSvc.List(c.Request.Context(), kind, documentdomain.ListFilter{
			Search:   c.Query("search"),
			DateFrom: c.Query("from"),
			DateTo:   c.Query("to"),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{path: docs})
	})

	api.POST("/"+path, func(c *gin.Context) {
		var req documentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		create := documentdomain.CreateDocumentRequest{
			Number:  req.Number,
			Date:    req.Date,
			PartyID: req.PartyID,
			Lines:   req.lineInputs(),
		}
		if req.Snapshot != nil {
			create.Snapshot = *req.Snapshot
		}

		doc, err := s.documentSvc.Create(c.Request.Context(), kind, create)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{string(kind): doc})
	})

	api.GET("/"+path+"/:id", func(c *gin.Context) {
		doc, err := s.documentSvc.GetByID(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{string(kind): doc})
	})

	api.GET("/"+path+"/by-number/:number", func(c *gin.Context) {
		doc, err := s.documentSvc.GetByNumber(c.Request.Context(), kind, c.Param("number"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{string(kind): doc})
	})

	api.PUT("/"+path+"/:id", func(c *gin.Context) {
		var req documentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		doc, err := s.documentSvc.Update(c.Request.Context(), kind, documentdomain.UpdateDocumentRequest{
			ID:       c.Param("id"),
			Number:   req.Number,
			Date:     req.Date,
			PartyID:  req.PartyID,
			Snapshot: req.Snapshot,
			Lines:    req.lineInputs(),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{string(kind): doc})
	})

	api.DELETE("/"+path+"/:id", func(c *gin.Context) {
		if err := s.documentSvc.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}
