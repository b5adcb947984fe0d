package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"apotek-system/internal/database/models"
	inventory "apotek-system/internal/services/inventory/handler"
)

type InventoryHTTPHandler struct {
	inventory *inventory.InventoryHandler
}

func NewInventoryHTTPHandler(inventoryHandler *inventory.InventoryHandler) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		inventory: inventoryHandler,
	}
}

// Request structs
type CreateDrugRequest struct {
	Name              string  `json:"name" binding:"required"`
	ActiveIngredient  string  `json:"active_ingredient" binding:"required"`
	Producer          string  `json:"producer" binding:"required"`
	Category          string  `json:"category" binding:"required,oneof=hard free limited_free narcotics_psychotropics"`
	Unit              string  `json:"unit" binding:"required"`
	PurchasePrice     float64 `json:"purchase_price" binding:"required,gt=0"`
	PrescriptionPrice float64 `json:"prescription_price" binding:"required,gt=0"`
	GeneralPrice      float64 `json:"general_price" binding:"required,gt=0"`
	InsurancePrice    float64 `json:"insurance_price" binding:"required,gt=0"`
	Barcode           *string `json:"barcode,omitempty"`
	MinimumStock      int32   `json:"minimum_stock" binding:"gte=0"`
	StorageLocation   *string `json:"storage_location,omitempty"`
}

type CreateBatchRequest struct {
	DrugID         int64   `json:"drug_id" binding:"required"`
	BatchNumber    string  `json:"batch_number" binding:"required"`
	ExpirationDate string  `json:"expiration_date" binding:"required,datetime=2006-01-02"`
	Quantity       int32   `json:"quantity" binding:"required,gt=0"`
	PurchasePrice  float64 `json:"purchase_price" binding:"required,gt=0"`
	SupplierID     int64   `json:"supplier_id" binding:"required"`
	ReceivedDate   string  `json:"received_date" binding:"required,datetime=2006-01-02"`
}

type CreateSupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID       int64   `json:"supplier_id" binding:"required"`
	TotalAmount      float64 `json:"total_amount" binding:"required,gt=0"`
	OrderDate        string  `json:"order_date" binding:"required,datetime=2006-01-02"`
	ExpectedDelivery *string `json:"expected_delivery,omitempty" binding:"omitempty,datetime=2006-01-02"`
	CreatedBy        int64   `json:"created_by" binding:"required"`
}

// Query structs
type SearchDrugsQuery struct {
	Query string `form:"q"`
}

type ExpiringBatchesQuery struct {
	MonthsAhead int `form:"months,default=6"`
}

func parseDate(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", s, time.Local)
	return t
}

// --- Drug Handlers ---

func (h *InventoryHTTPHandler) CreateDrug(c *gin.Context) {
	var req CreateDrugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid drug payload: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	drug, err := h.inventory.CreateDrug(ctx, inventory.CreateDrugInput{
		Name:              req.Name,
		ActiveIngredient:  req.ActiveIngredient,
		Producer:          req.Producer,
		Category:          models.DrugCategory(req.Category),
		Unit:              req.Unit,
		PurchasePrice:     req.PurchasePrice,
		PrescriptionPrice: req.PrescriptionPrice,
		GeneralPrice:      req.GeneralPrice,
		InsurancePrice:    req.InsurancePrice,
		Barcode:           req.Barcode,
		MinimumStock:      req.MinimumStock,
		StorageLocation:   req.StorageLocation,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create drug"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Drug created successfully", drug))
}

func (h *InventoryHTTPHandler) GetDrugs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	drugs, err := h.inventory.GetDrugs(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list drugs"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Drugs retrieved successfully", drugs))
}

func (h *InventoryHTTPHandler) SearchDrugs(c *gin.Context) {
	var query SearchDrugsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	drugs, err := h.inventory.SearchDrugs(ctx, query.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Drug search failed"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Drugs retrieved successfully", drugs))
}

func (h *InventoryHTTPHandler) GetLowStockDrugs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	drugs, err := h.inventory.GetLowStockDrugs(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list low stock drugs"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Low stock drugs retrieved successfully", drugs))
}

// --- Batch Handlers ---

func (h *InventoryHTTPHandler) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid batch payload: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := h.inventory.CreateBatch(ctx, inventory.CreateBatchInput{
		DrugID:         req.DrugID,
		BatchNumber:    req.BatchNumber,
		ExpirationDate: parseDate(req.ExpirationDate),
		Quantity:       req.Quantity,
		PurchasePrice:  req.PurchasePrice,
		SupplierID:     req.SupplierID,
		ReceivedDate:   parseDate(req.ReceivedDate),
	})
	if err != nil {
		if errors.Is(err, inventory.ErrDrugNotFound) || errors.Is(err, inventory.ErrSupplierNotFound) {
			c.JSON(http.StatusConflict, errorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create batch"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Batch created successfully", batch))
}

func (h *InventoryHTTPHandler) GetBatchByID(c *gin.Context) {
	batchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid batch ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := h.inventory.GetBatchByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, inventory.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Batch not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to get batch"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Batch retrieved successfully", batch))
}

func (h *InventoryHTTPHandler) GetBatchesByDrug(c *gin.Context) {
	drugID, err := strconv.ParseInt(c.Param("drugId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid drug ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batches, err := h.inventory.GetBatchesByDrug(ctx, drugID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list batches"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Batches retrieved successfully", batches))
}

func (h *InventoryHTTPHandler) GetExpiringBatches(c *gin.Context) {
	var query ExpiringBatchesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batches, err := h.inventory.GetExpiringBatches(ctx, query.MonthsAhead)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list expiring batches"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Expiring batches retrieved successfully", batches))
}

// --- Supplier Handlers ---

func (h *InventoryHTTPHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid supplier payload: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	supplier, err := h.inventory.CreateSupplier(ctx, inventory.CreateSupplierInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create supplier"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Supplier created successfully", supplier))
}

func (h *InventoryHTTPHandler) GetSuppliers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	suppliers, err := h.inventory.GetSuppliers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list suppliers"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Suppliers retrieved successfully", suppliers))
}

// --- Purchase Order Handlers ---

func (h *InventoryHTTPHandler) CreatePurchaseOrder(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid purchase order payload: "+err.Error()))
		return
	}

	var expected *time.Time
	if req.ExpectedDelivery != nil {
		t := parseDate(*req.ExpectedDelivery)
		expected = &t
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	po, err := h.inventory.CreatePurchaseOrder(ctx, inventory.CreatePurchaseOrderInput{
		SupplierID:       req.SupplierID,
		TotalAmount:      req.TotalAmount,
		OrderDate:        parseDate(req.OrderDate),
		ExpectedDelivery: expected,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		if errors.Is(err, inventory.ErrSupplierNotFound) {
			c.JSON(http.StatusConflict, errorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create purchase order"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Purchase order created successfully", po))
}
