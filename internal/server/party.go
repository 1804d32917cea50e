package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	partydomain "github.com/smallbiznis/finbook/internal/party/domain"
)

type partyRequest struct {
	PartyType        string `json:"party_type"`
	Name             string `json:"name"`
	TaxNumber        string `json:"tax_number"`
	RegistrationName string `json:"registration_name"`
	PhoneNumber      string `json:"phone_number"`
	Address          string `json:"address"`
	Website          string `json:"website"`
	Country          string `json:"country"`
	Address2         string `json:"address_2"`
}

func (r partyRequest) input() partydomain.PartyInput {
	return partydomain.PartyInput{
		PartyType:        r.PartyType,
		Name:             r.Name,
		TaxNumber:        r.TaxNumber,
		RegistrationName: r.RegistrationName,
		PhoneNumber:      r.PhoneNumber,
		Address:          r.Address,
		Website:          r.Website,
		Country:          r.Country,
		Address2:         r.Address2,
	}
}

// registerPartyRoutes wires one registry (customers or vendors) under
// its own path segment. Both share the same handler bodies with the
// kind closed over.
func (s *Server) registerPartyRoutes(api *gin.RouterGroup, path string, kind partydomain.Kind) {
	api.GET("/"+path, func(c *gin.Context) {
		parties, err := s.partySvc.List(c.Request.Context(), kind)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{path: parties})
	})

	api.POST("/"+path, func(c *gin.Context) {
		var req partyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		created, err := s.partySvc.Create(c.Request.Context(), kind, req.input())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{string(kind): created})
	})

	api.GET("/"+path+"/:id", func(c *gin.Context) {
		found, err := s.partySvc.GetByID(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{string(kind): found})
	})

	api.PUT("/"+path+"/:id", func(c *gin.Context) {
		var req partyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		updated, err := s.partySvc.Update(c.Request.Context(), kind, c.Param("id"), req.input())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{string(kind): updated})
	})

	api.DELETE("/"+path+"/:id", func(c *gin.Context) {
		if err := s.partySvc.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}
