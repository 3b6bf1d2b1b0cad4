package handlers

import (
	"github.com/gin-gonic/gin"

	"chorus/social-service/middleware"
	"chorus/social-service/utils"
)

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	Logger     *utils.Logger
	Guard      *middleware.SessionGuard
	CORSOrigin string

	Users     *UserHandler
	Posts     *PostHandler
	Messages  *MessageHandler
	Presence  *PresenceHandler
	WebSocket *WebSocketHandler
	Online    func() int
}

// NewRouter builds the gin engine with every API route.
func NewRouter(r Router) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(r.Logger))
	router.Use(middleware.CORS(r.CORSOrigin))

	router.GET("/health", HealthCheck(r.Online))
	router.GET("/ws", r.WebSocket.Connect)

	protect := r.Guard.Handler()
	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/signup", r.Users.Signup)
			users.POST("/login", r.Users.Login)
			users.POST("/logout", r.Users.Logout)
			users.GET("/profile/:query", r.Users.GetProfile)
			users.POST("/follow/:id", protect, r.Users.Follow)
			users.PUT("/update/:id", protect, r.Users.Update)
		}

		posts := api.Group("/posts")
		{
			posts.GET("/feed", protect, r.Posts.Feed)
			posts.POST("/create", protect, r.Posts.Create)
			posts.GET("/:id", r.Posts.Get)
			posts.GET("/user/:username", r.Posts.UserPosts)
			posts.DELETE("/:id", protect, r.Posts.Delete)
			posts.PUT("/like/:id", protect, r.Posts.LikeUnlike)
			posts.PUT("/reply/:id", protect, r.Posts.Reply)
		}

		messages := api.Group("/messages", protect)
		{
			messages.GET("/conversations", r.Messages.Conversations)
			messages.GET("/:otherUserId", r.Messages.History)
			messages.POST("", r.Messages.Send)
		}

		presence := api.Group("/presence")
		{
			presence.GET("/online", r.Presence.GetOnlineUsers)
			presence.GET("/status/:userId", r.Presence.GetStatus)
		}
	}

	return router
}
