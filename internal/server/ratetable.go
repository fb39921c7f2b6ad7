package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	ratetabledomain "github.com/taxops/fbrgate/internal/ratetable/domain"
)

func (s *Server) ListTransactionTypes(c *gin.Context) {
	types, err := s.rateTableSvc.TransactionTypes(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"transaction_types": types}})
}

func (s *Server) ListRates(c *gin.Context) {
	var query struct {
		TransactionTypeID string `form:"transaction_type_id"`
		LookupID          string `form:"lookup_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	txTypeID, err := strconv.ParseInt(strings.TrimSpace(query.TransactionTypeID), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("transaction_type_id", "invalid_transaction_type_id", "must be an integer"))
		return
	}

	resp, err := s.rateTableSvc.RatesFor(c.Request.Context(), ratetabledomain.ListRatesRequest{
		TransactionTypeID: txTypeID,
		LookupID:          strings.TrimSpace(query.LookupID),
	})
	if err != nil {
		abortOrDiscardStale(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSROSchedules(c *gin.Context) {
	var query struct {
		RateOptionID string `form:"rate_option_id"`
		ProvinceCode string `form:"province_code"`
		LookupID     string `form:"lookup_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateTableSvc.SROSchedules(c.Request.Context(), ratetabledomain.ListSROSchedulesRequest{
		RateOptionID: strings.TrimSpace(query.RateOptionID),
		ProvinceCode: strings.TrimSpace(query.ProvinceCode),
		LookupID:     strings.TrimSpace(query.LookupID),
	})
	if err != nil {
		abortOrDiscardStale(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSROItems(c *gin.Context) {
	var query struct {
		ScheduleID string `form:"schedule_id"`
		LookupID   string `form:"lookup_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateTableSvc.SROItems(c.Request.Context(), ratetabledomain.ListSROItemsRequest{
		ScheduleID: strings.TrimSpace(query.ScheduleID),
		LookupID:   strings.TrimSpace(query.LookupID),
	})
	if err != nil {
		abortOrDiscardStale(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// abortOrDiscardStale turns a superseded lookup into 204 so the client
// drops the response instead of rendering stale options.
func abortOrDiscardStale(c *gin.Context, err error) {
	if errors.Is(err, ratetabledomain.ErrStaleLookup) {
		c.Status(http.StatusNoContent)
		return
	}
	AbortWithError(c, err)
}
