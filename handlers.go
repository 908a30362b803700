package main

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/cafepos_backend/models"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/bills", createBillHandler())
	r.GET("/bills", listBillsHandler())
	r.GET("/bills/:id", getBillHandler())
	r.PUT("/bills/:id", updateBillHandler())
	r.POST("/bills/:id/sales", recordSaleHandler())
	r.GET("/bills/:id/details", listBillDetailsHandler())

	r.POST("/tables", createTableHandler())
	r.GET("/tables", listTablesHandler())
	r.GET("/tables/:id", getTableHandler())
	r.PUT("/tables/:id/status", updateTableStatusHandler())

	r.POST("/products", createProductHandler())
	r.GET("/products", listProductsHandler())
	r.GET("/products/:id", getProductHandler())
	r.PUT("/products/:id/active", setProductActiveHandler())

	r.POST("/consumables", createConsumableHandler())
	r.GET("/consumables", listConsumablesHandler())
	r.GET("/consumables/:id", getConsumableHandler())
	r.POST("/consumables/:id/restock", restockConsumableHandler())

	r.POST("/cash-registers", createCashRegisterHandler())
	r.GET("/cash-registers", listCashRegistersHandler())
	r.GET("/cash-registers/:id", getCashRegisterHandler())
	r.DELETE("/cash-registers/:id", deactivateCashRegisterHandler())

	r.POST("/users", createUserHandler())
	r.GET("/users", listUsersHandler())
	r.GET("/users/:id", getUserHandler())
	r.PUT("/users/:id/password", changeUserPasswordHandler())
}

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

/* bills */

func createBillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBill
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bill, err := models.CreateBill(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, bill)
	}
}

func listBillsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		bills, err := models.GetBills(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, bills)
	}
}

func getBillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		bill, err := models.GetBill(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "bill not found"})
			return
		}
		c.JSON(http.StatusOK, bill)
	}
}

func updateBillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input models.UpdateBillInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bill, err := models.UpdateBill(c.Request.Context(), id, &input)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "bill not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, bill)
	}
}

// recordSaleRequest carries only the sale lines; the bill id comes from
// the path.
type recordSaleRequest struct {
	Lines []models.SaleLine `json:"lines" binding:"required,min=1,dive"`
}

func recordSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "RecordSale")
		defer span.End()

		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req recordSaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		bill, err := models.RecordSale(ctx, &models.NewSale{BillId: id, Lines: req.Lines})
		if err != nil {
			var stockErr *models.InsufficientStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusConflict, gin.H{
					"error":      stockErr.Error(),
					"shortfalls": stockErr.Shortfalls,
				})
				return
			}
			var productErr *models.ProductError
			if errors.As(err, &productErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": productErr.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, bill)
	}
}

func listBillDetailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		details, err := models.GetBillDetails(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

/* tables */

func createTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTable
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		table, err := models.CreateTable(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, table)
	}
}

func listTablesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, err := models.GetTables(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tables)
	}
}

func getTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		table, err := models.GetTable(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

type tableStatusRequest struct {
	Status models.TableStatus `json:"status" binding:"required"`
}

func updateTableStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tableStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		table, err := models.UpdateTableStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

/* products */

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.GetProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func setProductActiveHandler() gin.HandlerFunc {
	type request struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input request
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := models.SetProductActive(c.Request.Context(), id, *input.IsActive)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

/* consumables */

func createConsumableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewConsumable
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		consumable, err := models.CreateConsumable(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, consumable)
	}
}

func listConsumablesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		consumables, err := models.GetConsumables(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, consumables)
	}
}

func getConsumableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		consumable, err := models.GetConsumable(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "consumable not found"})
			return
		}
		c.JSON(http.StatusOK, consumable)
	}
}

type restockRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

func restockConsumableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req restockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		consumable, err := models.RestockConsumable(c.Request.Context(), id, req.Quantity)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "consumable not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, consumable)
	}
}

/* cash registers */

func createCashRegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCashRegister
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		register, err := models.CreateCashRegister(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, register)
	}
}

func listCashRegistersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		registers, err := models.GetCashRegisters(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, registers)
	}
}

func getCashRegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		register, err := models.GetCashRegister(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "cash register not found"})
			return
		}
		c.JSON(http.StatusOK, register)
	}
}

func deactivateCashRegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		register, err := models.DeactivateCashRegister(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cash register not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, register)
	}
}

/* users */

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func getUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		user, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func changeUserPasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := models.ChangeUserPassword(c.Request.Context(), id, req.Password); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
