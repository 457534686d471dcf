package handler

import (
	"thunderbet_pix_back/pkg/middleware"
	"thunderbet_pix_back/pkg/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := viper.GetStringSlice("server.allowed_origins")
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", h.GetMe)
	}

	api := router.Group("/api")
	{
		pix := api.Group("/pix", middleware.AuthMiddleware())
		{
			pix.POST("/deposit", h.StartDeposit)
			pix.GET("/deposit/status", h.DepositStatus)
			pix.GET("/deposit/code", h.GetPixCode)
			pix.POST("/deposit/cancel", h.CancelDeposit)
			pix.GET("/deposits", h.Deposits)
			pix.POST("/withdraw", h.Withdraw)
			pix.GET("/withdrawals", h.Withdrawals)
			pix.GET("/balance", h.GetBalance)
		}
	}
	return router
}
