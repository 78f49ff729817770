package router

import (
	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/interfaces/http/handler"
)

// Handlers bundles every handler the API serves
type Handlers struct {
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Catalog      *handler.CatalogHandler
	GroupBuy     *handler.GroupBuyHandler
	Chat         *handler.ChatHandler
	Wallet       *handler.WalletHandler
	Notification *handler.NotificationHandler
	Outbox       *handler.OutboxHandler
	System       *handler.SystemHandler
}

// Guards are the middlewares routes are protected with
type Guards struct {
	// User requires a valid bearer token
	User gin.HandlerFunc
	// Stream is User that also accepts ?token= for websocket clients
	Stream gin.HandlerFunc
	// Admin must run after User
	Admin gin.HandlerFunc
	// AuthLimit throttles credential endpoints; nil disables it
	AuthLimit gin.HandlerFunc
}

// APIRoutes returns the /api/v1 route table
func APIRoutes(h Handlers, g Guards) []RouteRegistrar {
	user, admin, stream := g.User, g.Admin, g.Stream
	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if g.AuthLimit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{g.AuthLimit, fn}
	}

	authRoutes := NewDomainGroup("auth", "/auth").
		POST("/signup", limited(h.Auth.SignUp)...).
		POST("/signin", limited(h.Auth.SignIn)...).
		POST("/refresh", limited(h.Auth.Refresh)...).
		POST("/signout", user, h.Auth.SignOut).
		GET("/me", user, h.Auth.Me)

	profileRoutes := NewDomainGroup("profiles", "/profiles").
		PUT("/me", user, h.Profile.UpdateMe).
		GET("/:id", h.Profile.Get)

	categoryRoutes := NewDomainGroup("categories", "/categories").
		GET("", h.Catalog.ListCategories).
		POST("", user, admin, h.Catalog.CreateCategory)

	pickupRoutes := NewDomainGroup("pickup-locations", "/pickup-locations").
		GET("", h.Catalog.ListPickupLocations).
		POST("", user, admin, h.Catalog.CreatePickupLocation).
		PATCH("/:id", user, admin, h.Catalog.SetPickupLocationActive)

	groupBuyRoutes := NewDomainGroup("group-buys", "/group-buys").
		GET("", h.GroupBuy.List).
		POST("", user, h.GroupBuy.Create).
		GET("/:id", h.GroupBuy.Get).
		PUT("/:id", user, h.GroupBuy.Update).
		DELETE("/:id", user, h.GroupBuy.Cancel).
		POST("/:id/join", user, h.GroupBuy.Join).
		DELETE("/:id/join", user, h.GroupBuy.Leave).
		GET("/:id/joined", user, h.GroupBuy.Joined).
		GET("/:id/participants", h.GroupBuy.Participants).
		GET("/:id/messages", h.Chat.ListMessages).
		POST("/:id/messages", user, h.Chat.SendMessage).
		GET("/:id/chat/ws", stream, h.Chat.Stream)

	meRoutes := NewDomainGroup("me", "/me").
		Use(user).
		GET("/group-buys", h.GroupBuy.MyGroupBuys).
		GET("/orders", h.GroupBuy.MyOrders)

	uploadRoutes := NewDomainGroup("uploads", "/uploads").
		Use(user).
		POST("/images", h.GroupBuy.RequestImageUpload)

	walletRoutes := NewDomainGroup("wallet", "/wallet").
		Use(user).
		GET("", h.Wallet.GetBalance).
		GET("/transactions", h.Wallet.ListTransactions).
		POST("/deposit", h.Wallet.Deposit).
		POST("/withdraw", h.Wallet.Withdraw)

	notificationRoutes := NewDomainGroup("notifications", "/notifications").
		GET("/ws", stream, h.Notification.Stream).
		GET("", user, h.Notification.List).
		GET("/unread-count", user, h.Notification.UnreadCount).
		PATCH("/read-all", user, h.Notification.MarkAllRead).
		PATCH("/:id/read", user, h.Notification.MarkRead).
		DELETE("/:id", user, h.Notification.Delete)

	adminRoutes := NewDomainGroup("admin", "/admin").Use(user, admin)
	adminRoutes.Group("outbox", "/outbox").
		GET("/stats", h.Outbox.GetStats).
		GET("/dead", h.Outbox.GetDeadLetterEntries).
		POST("/dead/retry", h.Outbox.RetryAllDeadEntries).
		GET("/:id", h.Outbox.GetEntry).
		POST("/:id/retry", h.Outbox.RetryDeadEntry)

	systemRoutes := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{
		authRoutes,
		profileRoutes,
		categoryRoutes,
		pickupRoutes,
		groupBuyRoutes,
		meRoutes,
		uploadRoutes,
		walletRoutes,
		notificationRoutes,
		adminRoutes,
		systemRoutes,
	}
}
