package main

// @title Forecast Platform API
// @version 1.0
// @description Sales forecasting backend: inventory, operation history and ML-driven demand predictions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/prognoza/forecast-platform
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/prognoza/forecast-platform/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Auth
// @tag.description Authentication endpoints

// @tag.name Users
// @tag.description User management endpoints

// @tag.name Admin
// @tag.description Admin-only endpoints

// @tag.name Organizations
// @tag.description Organization and sales point management

// @tag.name Inventory
// @tag.description Product catalog and operation history

// @tag.name Forecast
// @tag.description ML forecasting endpoints

// @tag.name Upload
// @tag.description Operation history file import

// @tag.name Health
// @tag.description Health check endpoints
