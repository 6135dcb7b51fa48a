package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/auth"
	"github.com/dicode-app/dicode-server/internal/config"
	"github.com/dicode-app/dicode-server/internal/core"
	"github.com/dicode-app/dicode-server/internal/service/friends"
	"github.com/dicode-app/dicode-server/internal/store"
)

// NewServer builds the HTTP server: REST API, health, and the
// websocket endpoint bridging into the hub.
func NewServer(hub *core.Hub, authService *auth.Service, friendsService *friends.Service, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, st, logger)
	roomHandlers := NewRoomHandlers(hub, st, logger)
	friendHandlers := NewFriendHandlers(friendsService, st, logger)
	userHandlers := NewUserHandlers(st, logger)

	api := router.Group("/api")
	{
		api.POST("/register", RateLimitMiddleware(30), apiHandlers.Register)
		api.POST("/login", RateLimitMiddleware(30), apiHandlers.Login)
		api.POST("/guest", RateLimitMiddleware(30), apiHandlers.Guest)

		authorized := api.Group("")
		authorized.Use(AuthMiddleware(authService, logger))
		{
			authorized.GET("/me", apiHandlers.Me)

			authorized.POST("/rooms", roomHandlers.CreateRoom)
			authorized.GET("/rooms", roomHandlers.ListRooms)
			authorized.GET("/rooms/:id", roomHandlers.GetRoom)
			authorized.DELETE("/rooms/:id", roomHandlers.DeleteRoom)

			authorized.GET("/friends", friendHandlers.List)
			authorized.POST("/friends/:username", friendHandlers.SendRequest)
			authorized.POST("/friends/:username/accept", friendHandlers.AcceptRequest)
			authorized.DELETE("/friends/:username", friendHandlers.RemoveFriend)

			authorized.GET("/users/search", userHandlers.Search)
		}
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, st, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
