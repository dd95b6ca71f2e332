package routes

import (
	"net/http"

	"cropshare/auth"
	"cropshare/crops"
	"cropshare/filemgr"
	"cropshare/messages"
	"cropshare/middleware"
	"cropshare/models"
	"cropshare/notifier"
	"cropshare/pickups"
	"cropshare/ratelim"
	"cropshare/requests"
	"cropshare/users"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir("static/uploads"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
}

func AddUserRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/users/profile", middleware.Authenticate(users.GetProfile))
	router.PUT("/api/users/profile", middleware.Authenticate(users.UpdateProfile))
	router.GET("/api/users/ngos", middleware.Authenticate(users.GetNGOs))
	router.GET("/api/users/nearby-ngos", middleware.Authenticate(users.GetNearbyNGOs))
	router.GET("/api/users/ecosystem", middleware.Authenticate(
		middleware.RequireRole(models.RoleNGO, users.GetEcosystem)))
	router.GET("/api/user/:id", rl.Limit(middleware.Authenticate(users.GetUser)))
}

func AddCropRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/crops", rl.Limit(crops.GetCrops))
	router.POST("/api/crops", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, crops.AddCrop)))
	router.GET("/api/crops/nearby", rl.Limit(crops.GetNearbyCrops))
	router.GET("/api/crops/mycrops", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, crops.GetMyCrops)))
	router.GET("/api/crops/catalogue", rl.Limit(crops.GetCatalogue))
	router.GET("/api/crops/suggest", rl.Limit(crops.Suggest))

	router.GET("/api/crop/:id", rl.Limit(middleware.OptionalAuth(crops.GetCrop)))
	router.PUT("/api/crop/:id", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, crops.EditCrop)))
	router.DELETE("/api/crop/:id", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, crops.DeleteCrop)))
}

func AddRequestRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/requests", middleware.Authenticate(
		middleware.RequireRole(models.RoleNGO, requests.MakeRequest)))
	router.GET("/api/requests/received", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, requests.GetReceived)))
	router.GET("/api/requests/sent", middleware.Authenticate(
		middleware.RequireRole(models.RoleNGO, requests.GetSent)))
	router.GET("/api/requests/partners", middleware.Authenticate(requests.GetAcceptedPartners))
	router.GET("/api/requests/unread-count", middleware.Authenticate(requests.UnreadCount))
	router.PUT("/api/request/:id", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, requests.UpdateStatus)))
}

func AddMessageRoutes(router *httprouter.Router, hub *notifier.Hub) {
	h := messages.NewHandler(hub)
	router.POST("/api/messages", middleware.Authenticate(h.Send))
	router.GET("/api/messages/conversations", middleware.Authenticate(h.Conversations))
	router.GET("/api/messages/unread-count", middleware.Authenticate(h.UnreadCount))
	router.GET("/api/messages/with/:otherUserId", middleware.Authenticate(h.GetConversation))
	router.PUT("/api/messages/mark-read/:senderId", middleware.Authenticate(h.MarkRead))
}

func AddPickupRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/pickups", middleware.Authenticate(
		middleware.RequireRole(models.RoleNGO, pickups.Create)))
	router.GET("/api/pickups/for-farmer", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, pickups.ForFarmer)))
	router.GET("/api/pickups/for-ngo", middleware.Authenticate(
		middleware.RequireRole(models.RoleNGO, pickups.ForNGO)))
	router.PUT("/api/pickup/:id", middleware.Authenticate(
		middleware.RequireRole(models.RoleFarmer, pickups.UpdateStatus)))
	router.DELETE("/api/pickup/:id", middleware.Authenticate(pickups.Cancel))
	router.GET("/api/pickup/:id/qr", rl.Limit(middleware.Authenticate(pickups.QRCode)))
	router.GET("/api/pickup/:id/manifest", rl.Limit(middleware.Authenticate(pickups.Manifest)))
}

func AddUploadRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/upload/:entityType/:id", rl.Limit(middleware.Authenticate(filemgr.UploadImage)))
}

func AddWebSocketRoutes(router *httprouter.Router, hub *notifier.Hub) {
	router.GET("/ws", middleware.Authenticate(notifier.WebSocketHandler(hub)))
}

func AddHealthRoutes(router *httprouter.Router) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
}

// RoutesWrapper registers every route group on the router.
func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter, hub *notifier.Hub) {
	AddAuthRoutes(router, rl)
	AddUserRoutes(router, rl)
	AddCropRoutes(router, rl)
	AddRequestRoutes(router, rl)
	AddMessageRoutes(router, hub)
	AddPickupRoutes(router, rl)
	AddUploadRoutes(router, rl)
	AddWebSocketRoutes(router, hub)
	AddHealthRoutes(router)
	AddStaticRoutes(router)
}
