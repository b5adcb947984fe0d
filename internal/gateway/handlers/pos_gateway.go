package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"apotek-system/internal/database/models"
	pos "apotek-system/internal/services/pos/handler"
)

type POSHTTPHandler struct {
	pos *pos.POSHandler
}

func NewPOSHTTPHandler(posHandler *pos.POSHandler) *POSHTTPHandler {
	return &POSHTTPHandler{
		pos: posHandler,
	}
}

// Request structs
type CreateTransactionRequest struct {
	Type           string  `json:"type" binding:"required,oneof=prescription non_prescription"`
	CustomerID     *int64  `json:"customer_id,omitempty"`
	DoctorName     *string `json:"doctor_name,omitempty"`
	PatientName    *string `json:"patient_name,omitempty"`
	Subtotal       float64 `json:"subtotal" binding:"required,gt=0"`
	DiscountAmount float64 `json:"discount_amount" binding:"gte=0"`
	TotalAmount    float64 `json:"total_amount" binding:"required,gt=0"`
	PaymentMethod  string  `json:"payment_method" binding:"required,oneof=cash debit_card credit_card qris receivable"`
	CashierID      int64   `json:"cashier_id" binding:"required"`
}

type CreateTransactionItemRequest struct {
	DrugID         int64   `json:"drug_id" binding:"required"`
	BatchID        int64   `json:"batch_id" binding:"required"`
	Quantity       int32   `json:"quantity" binding:"required,gt=0"`
	UnitPrice      float64 `json:"unit_price" binding:"required,gt=0"`
	DiscountAmount float64 `json:"discount_amount" binding:"gte=0"`
	Subtotal       float64 `json:"subtotal" binding:"required,gt=0"`
}

type CreateCustomerRequest struct {
	Name          string  `json:"name" binding:"required"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	InsuranceInfo *string `json:"insurance_info,omitempty"`
}

type CreateExpenseRequest struct {
	Type        string  `json:"type" binding:"required,oneof=salary electricity rent other_operational"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	ExpenseDate string  `json:"expense_date" binding:"required,datetime=2006-01-02"`
	CreatedBy   int64   `json:"created_by" binding:"required"`
}

// Query structs
type DailySalesQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// --- Transaction Handlers ---

func (h *POSHTTPHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid transaction payload: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transaction, err := h.pos.CreateTransaction(ctx, pos.CreateTransactionInput{
		Type:           models.TransactionType(req.Type),
		CustomerID:     req.CustomerID,
		DoctorName:     req.DoctorName,
		PatientName:    req.PatientName,
		Subtotal:       req.Subtotal,
		DiscountAmount: req.DiscountAmount,
		TotalAmount:    req.TotalAmount,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		CashierID:      req.CashierID,
	})
	if err != nil {
		if errors.Is(err, pos.ErrCashierNotFound) || errors.Is(err, pos.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create transaction"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Transaction created successfully", transaction))
}

func (h *POSHTTPHandler) CreateTransactionItem(c *gin.Context) {
	transactionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid transaction ID"))
		return
	}

	var req CreateTransactionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid transaction item payload: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item, err := h.pos.CreateTransactionItem(ctx, pos.CreateTransactionItemInput{
		TransactionID:  transactionID,
		DrugID:         req.DrugID,
		BatchID:        req.BatchID,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		DiscountAmount: req.DiscountAmount,
		Subtotal:       req.Subtotal,
	})
	if err != nil {
		if errors.Is(err, pos.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Batch not found"))
			return
		}
		if errors.Is(err, pos.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, errorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create transaction item"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Transaction item created successfully", item))
}

// --- Report Handlers ---

func (h *POSHTTPHandler) GetDailySalesSummary(c *gin.Context) {
	var query DailySalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	date := time.Now()
	if query.Date != "" {
		date, _ = time.ParseInLocation("2006-01-02", query.Date, time.Local)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary, err := h.pos.GetDailySalesSummary(ctx, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to build daily sales summary"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Daily sales summary retrieved successfully", summary))
}

// --- Customer Handlers ---

func (h *POSHTTPHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid customer payload: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer, err := h.pos.CreateCustomer(ctx, pos.CreateCustomerInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		InsuranceInfo: req.InsuranceInfo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create customer"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Customer created successfully", customer))
}

// --- Expense Handlers ---

func (h *POSHTTPHandler) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid expense payload: "+err.Error()))
		return
	}

	expenseDate, _ := time.ParseInLocation("2006-01-02", req.ExpenseDate, time.Local)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	expense, err := h.pos.CreateExpense(ctx, pos.CreateExpenseInput{
		Type:        models.ExpenseType(req.Type),
		Description: req.Description,
		Amount:      req.Amount,
		ExpenseDate: expenseDate,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create expense"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Expense created successfully", expense))
}
