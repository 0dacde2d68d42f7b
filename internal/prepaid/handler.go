package prepaid

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/api"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	repo    Repository
	service Service
}

func NewHandler(repo Repository, service Service) *Handler {
	return &Handler{repo: repo, service: service}
}

// CreatePackage godoc
// @Summary      Create catalog package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        package  body      CreatePackageRequest  true  "Package"
// @Success      201      {object}  Package
// @Failure      400      {object}  api.ErrorResponse
// @Router       /admin/packages [post]
func (h *Handler) CreatePackage(c *gin.Context) {
	var req CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "price must be a non-negative decimal"})
		return
	}

	discount := decimal.Zero
	if req.Discount != "" {
		discount, err = decimal.NewFromString(req.Discount)
		if err != nil || discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(1)) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "discount must be a decimal between 0 and 1"})
			return
		}
	}

	created, err := h.repo.CreatePackage(c.Request.Context(), &Package{
		Name:         req.Name,
		AmountHours:  req.AmountHours,
		Price:        price,
		Discount:     discount,
		ValidityDays: req.ValidityDays,
		Active:       true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create package"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListPackages godoc
// @Summary      List catalog packages
// @Tags         packages
// @Produce      json
// @Param        active  query     bool  false  "Only active packages"
// @Success      200     {array}   Package
// @Router       /packages [get]
func (h *Handler) ListPackages(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	packages, err := h.repo.ListPackages(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch packages"})
		return
	}

	c.JSON(http.StatusOK, packages)
}

// Purchase godoc
// @Summary      Purchase a package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        purchase  body      PurchaseRequest  true  "Purchase"
// @Success      201       {object}  UserPackage
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /packages/purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.service.Purchase(c.Request.Context(), req.UserID, req.PackageID)
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetUserPackage godoc
// @Summary      Get purchased package
// @Tags         packages
// @Produce      json
// @Param        userPackageID  path      int  true  "User package ID"
// @Success      200            {object}  UserPackage
// @Failure      404            {object}  api.ErrorResponse
// @Router       /user-packages/{userPackageID} [get]
func (h *Handler) GetUserPackage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("userPackageID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user package ID"})
		return
	}

	up, err := h.service.GetUserPackage(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, up)
}

// ListUserPackages godoc
// @Summary      List a user's packages
// @Tags         packages
// @Produce      json
// @Param        userID  path      int   true   "User ID"
// @Param        active  query     bool  false  "Only active packages"
// @Success      200     {array}   UserPackage
// @Router       /users/{userID}/packages [get]
func (h *Handler) ListUserPackages(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
		return
	}

	packages, err := h.service.ListUserPackages(c.Request.Context(), userID, c.Query("active") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch user packages"})
		return
	}

	c.JSON(http.StatusOK, packages)
}

// BestAvailable godoc
// @Summary      Best available package for a user
// @Description  Returns the active, non-expired package with the most remaining hours.
// @Tags         packages
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  UserPackage
// @Failure      404     {object}  api.ErrorResponse
// @Router       /users/{userID}/packages/best [get]
func (h *Handler) BestAvailable(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
		return
	}

	up, err := h.service.BestAvailable(c.Request.Context(), userID)
	if err != nil {
		if apperr.IsNotFound(err) || errors.Is(err, ErrNoAvailablePackage) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch best package"})
		return
	}

	c.JSON(http.StatusOK, up)
}
