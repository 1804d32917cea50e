package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/finbook/internal/report/domain"
)

func (s *Server) dashboard(c *gin.Context) {
	period := reportdomain.Period(c.DefaultQuery("period", string(reportdomain.PeriodMonth)))

	dashboard, err := s.reportSvc.Dashboard(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) fullReport(c *gin.Context) {
	summary, err := s.reportSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
