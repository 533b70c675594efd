package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"

	intconfig "campurent/internal/config"
	h "campurent/internal/http/handlers"
	"campurent/internal/http/middleware"
	"campurent/internal/realtime"
	"campurent/internal/repositories"
	"campurent/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps bundles the constructed collaborators the router mounts. Everything
// is injected; handlers never reach for globals.
type Deps struct {
	DB       *sql.DB
	Wallet   *services.WalletService
	Delivery services.DeliveryService
	Admin    services.AdminService
	Registry *realtime.ConnectionRegistry
}

// NewDeps wires repositories and services on top of one DB handle.
func NewDeps(db *sql.DB) Deps {
	wallet := services.NewWalletService(repositories.WalletRepository{DB: db})
	admin := services.AdminService{
		ActionRepo:       repositories.AdminActionRepository{DB: db},
		NotificationRepo: repositories.NotificationRepository{DB: db},
	}
	delivery := services.DeliveryService{
		TaskRepo:    repositories.DeliveryTaskRepository{DB: db},
		BookingRepo: repositories.BookingRepository{DB: db},
		Wallet:      wallet,
		Admin:       admin,
	}
	return Deps{
		DB:       db,
		Wallet:   wallet,
		Delivery: delivery,
		Admin:    admin,
		Registry: realtime.NewConnectionRegistry(),
	}
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	secret := []byte(env.JWTSecret)
	walletHandler := h.WalletHandler{Wallet: deps.Wallet, Statement: services.StatementService{Wallet: deps.Wallet}}
	deliveryHandler := h.DeliveryHandler{Delivery: deps.Delivery}
	adminHandler := h.AdminHandler{Delivery: deps.Delivery, Admin: deps.Admin, Wallet: deps.Wallet}
	notificationHandler := h.NotificationHandler{Admin: deps.Admin}
	wsHandler := h.NewWSHandler(deps.Registry)
	systemHandler := h.SystemHandler{DB: deps.DB}
	authHandler := h.AuthHandler{DB: deps.DB, JWTSecret: secret}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", systemHandler.Health)
		api.GET("/db-check", systemHandler.DBCheck)

		api.POST("/auth/login", authHandler.Login)

		// Public map/preview endpoint
		api.GET("/delivery/nearby", deliveryHandler.GetNearby)

		// Browser websockets cannot carry the Authorization header; the
		// path-scoped user id mirrors the push contract of the client app.
		api.GET("/ws/:user_id", wsHandler.Serve)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(secret))
		{
			wallet := authed.Group("/wallet")
			wallet.GET("", walletHandler.GetBalance)
			wallet.GET("/transactions", walletHandler.GetHistory)
			wallet.GET("/statement", walletHandler.GetStatementPDF)

			delivery := authed.Group("/delivery")
			delivery.POST("/tasks", deliveryHandler.CreateTask)
			delivery.GET("/tasks", deliveryHandler.GetMyTasks)
			delivery.GET("/tasks/booking/:booking_id", deliveryHandler.GetTaskByBooking)
			delivery.POST("/pickup/verify", deliveryHandler.VerifyPickup)
			delivery.POST("/drop/verify", deliveryHandler.VerifyDrop)
			delivery.POST("/tasks/:id/location", deliveryHandler.UpdateLocation)

			authed.GET("/notifications", notificationHandler.List)
			authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/delivery/override", adminHandler.OverrideVerification)
				admin.POST("/delivery/regenerate-otp", adminHandler.RegenerateOtp)
				admin.POST("/delivery/sweep", adminHandler.SweepStale)
				admin.GET("/actions", adminHandler.GetActions)
				admin.POST("/wallet/credit", adminHandler.CreditWallet)
				admin.POST("/wallet/debit", adminHandler.DebitWallet)
			}
		}
	}

	return r
}
