package internal

import (
	"net/http"

	"shiftwatch/internal/controllers"
	"shiftwatch/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/codes", http.HandlerFunc(apiController.GetCodes))
	routers.Get("/runs/latest", http.HandlerFunc(apiController.GetLatestRun))
	routers.Get("/deliveries", http.HandlerFunc(apiController.GetDeliveries))
	routers.Post("/runs", http.HandlerFunc(apiController.TriggerRun))
	routers.Post("/codes/resend", http.HandlerFunc(apiController.Resend))
	return routers
}
