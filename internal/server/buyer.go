package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	buyerdomain "github.com/taxops/fbrgate/internal/buyer/domain"
)

type createBuyerRequest struct {
	NTNCNIC          string `json:"ntn_cnic"`
	BusinessName     string `json:"business_name"`
	Province         string `json:"province"`
	Address          string `json:"address"`
	RegistrationType string `json:"registration_type"`
}

func (s *Server) CreateBuyer(c *gin.Context) {
	var req createBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	buyer, err := s.buyerSvc.Create(c.Request.Context(), buyerdomain.CreateRequest{
		NTNCNIC:          req.NTNCNIC,
		BusinessName:     req.BusinessName,
		Province:         req.Province,
		Address:          req.Address,
		RegistrationType: req.RegistrationType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buyer})
}

func (s *Server) ListBuyers(c *gin.Context) {
	var query struct {
		PageToken        string `form:"page_token"`
		PageSize         int32  `form:"page_size"`
		Search           string `form:"q"`
		RegistrationType string `form:"registration_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.buyerSvc.List(c.Request.Context(), buyerdomain.ListRequest{
		PageToken:        strings.TrimSpace(query.PageToken),
		PageSize:         query.PageSize,
		Search:           strings.TrimSpace(query.Search),
		RegistrationType: strings.TrimSpace(query.RegistrationType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBuyerByID(c *gin.Context) {
	buyer, err := s.buyerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buyer})
}

type updateBuyerRequest struct {
	BusinessName     string `json:"business_name"`
	Province         string `json:"province"`
	Address          string `json:"address"`
	RegistrationType string `json:"registration_type"`
}

func (s *Server) UpdateBuyer(c *gin.Context) {
	var req updateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	buyer, err := s.buyerSvc.Update(c.Request.Context(), buyerdomain.UpdateRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		BusinessName:     req.BusinessName,
		Province:         req.Province,
		Address:          req.Address,
		RegistrationType: req.RegistrationType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buyer})
}

func (s *Server) DeleteBuyer(c *gin.Context) {
	if err := s.buyerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// BulkUploadBuyers ingests an xlsx workbook; the sheet layout matches
// the downloadable template.
func (s *Server) BulkUploadBuyers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "multipart field 'file' is required"))
		return
	}
	defer file.Close()

	result, err := s.buyerSvc.BulkUpload(c.Request.Context(), file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

type checkExistingRequest struct {
	NTNs []string `json:"ntns"`
}

func (s *Server) CheckExistingBuyers(c *gin.Context) {
	var req checkExistingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.buyerSvc.CheckExisting(c.Request.Context(), req.NTNs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
