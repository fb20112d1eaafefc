package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/ledgerline/ledgerline-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, importLimiter *middleware.RateLimiter, businessHandler *BusinessHandler, accountHandler *AccountHandler, transactionHandler *TransactionHandler, importHandler *ImportHandler, reportHandler *ReportHandler, typeMappingHandler *TypeMappingHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Business routes
	api.POST("/businesses", businessHandler.CreateBusiness)
	api.GET("/businesses", businessHandler.GetBusinesses)
	api.GET("/businesses/:businessId", businessHandler.GetBusiness)
	api.PUT("/businesses/:businessId", businessHandler.UpdateBusiness)
	api.DELETE("/businesses/:businessId", businessHandler.DeactivateBusiness)

	// Account type master list
	api.GET("/account-types", accountHandler.GetAccountTypes)

	// Chart of accounts routes (per business)
	accounts := api.Group("/businesses/:businessId/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeactivateAccount)
	accounts.GET("/:id/transactions", reportHandler.AccountDrilldown)

	// Transaction routes (per business)
	transactions := api.Group("/businesses/:businessId/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Import routes (per business, rate limited)
	imports := api.Group("/businesses/:businessId/imports")
	imports.Use(middleware.RateLimitMiddleware(importLimiter))
	imports.POST("", importHandler.ImportStatement)

	// Report routes
	reports := api.Group("/businesses/:businessId/reports")
	reports.GET("/profit-loss", reportHandler.ProfitLoss)
	reports.GET("/balance-sheet", reportHandler.BalanceSheet)
	api.GET("/reports/combined-profit-loss", reportHandler.CombinedProfitLoss)

	// Type mapping routes (global, shared across businesses)
	mappings := api.Group("/type-mappings")
	mappings.GET("", typeMappingHandler.GetMappings)
	mappings.POST("", typeMappingHandler.CreateMapping)
	mappings.PUT("/:id", typeMappingHandler.UpdateMapping)
	mappings.DELETE("/:id", typeMappingHandler.DeleteMapping)

	// WebSocket endpoint for live updates
	e.GET("/ws/:businessId", wsHandler.HandleWS)
}
