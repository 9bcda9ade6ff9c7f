package http

// PredictSales godoc
// @Summary Run a sales forecast
// @Description Assemble the organization's operation history, call the ML service and return its raw response
// @Tags Forecast
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{DaysCount=int} false "Forecast horizon in days (1-365, default 7)"
// @Success 200 {array} object
// @Failure 400 {object} object{error=string,details=string}
// @Failure 401 {object} object{error=string}
// @Failure 502 {object} object{error=string,details=string}
// @Router /api/forecast/predict [post]
func (h *ForecastHandler) PredictSalesDoc() {}

// GetForecastData godoc
// @Summary Forecast dashboard data
// @Description Trend, top products and history built from the latest prediction run
// @Tags Forecast
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{trend=object,topProducts=array,history=object}
// @Failure 400 {object} object{error=string}
// @Router /api/forecast/data [get]
func (h *ForecastHandler) GetForecastDataDoc() {}

// GetForecastHistory godoc
// @Summary Forecast history
// @Description Paginated prediction history with product-name search
// @Tags Forecast
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Param search query string false "Product name filter"
// @Success 200 {object} object{items=array,total=int}
// @Failure 400 {object} object{error=string}
// @Router /api/forecast/history [get]
func (h *ForecastHandler) GetForecastHistoryDoc() {}
