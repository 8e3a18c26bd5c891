package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Public routes serve the mobile app's read surfaces and device
// registration; mutations stay behind the admin token.
func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fights", handler.ListFights)
	mux.HandleFunc("GET /v1/fights/{fightID}", handler.GetFight)
	mux.HandleFunc("GET /v1/robots", handler.ListRobots)
	mux.HandleFunc("GET /v1/robots/{robotID}", handler.GetRobot)
	mux.HandleFunc("GET /v1/robots/{robotID}/fights", handler.ListFightsByRobot)
	mux.HandleFunc("GET /v1/schedule", handler.GetSchedule)
	mux.HandleFunc("POST /v1/subscribers", handler.RegisterSubscriber)
	mux.HandleFunc("DELETE /v1/subscribers", handler.DeactivateSubscriber)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/fights", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateFight)))
	mux.Handle("PUT /v1/fights/{fightID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.UpdateFight)))
	mux.Handle("DELETE /v1/fights/{fightID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.DeleteFight)))
	mux.Handle("POST /v1/robots", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateRobot)))
	mux.Handle("PUT /v1/robots/{robotID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.UpdateRobot)))
	mux.Handle("DELETE /v1/robots/{robotID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.DeleteRobot)))
	mux.Handle("PUT /v1/schedule", RequireAdminToken(adminToken, http.HandlerFunc(handler.SetSchedule)))
	mux.Handle("POST /v1/scraper/run", RequireAdminToken(adminToken, http.HandlerFunc(handler.RunScraper)))
}
