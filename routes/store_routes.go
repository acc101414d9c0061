package routes

import (
	"dropship-hub/controllers"
	"dropship-hub/models"

	"github.com/gin-gonic/gin"
)

func SetupProductRoutes(r *gin.Engine, g guards) {
	r.GET("/categories", controllers.GetCategories)

	products := r.Group("/products")
	{
		products.GET("", g.optional, controllers.GetProducts)
		products.GET("/:id", g.optional, controllers.GetProductByID)
		products.POST("", g.auth, g.admin, controllers.AddProduct)
		products.PATCH("/:id", g.auth, g.admin, controllers.UpdateProduct)
		products.DELETE("/:id", g.auth, g.admin, controllers.DeleteProduct)
	}

	cart := r.Group("/cart", g.auth)
	{
		cart.GET("", controllers.GetCart)
		cart.POST("", controllers.AddToCart)
		cart.PATCH("/:id", controllers.UpdateCartItem)
		cart.DELETE("/:id", controllers.RemoveFromCart)
	}

	wishlist := r.Group("/wishlist", g.auth)
	{
		wishlist.GET("", controllers.GetWishlist)
		wishlist.POST("", controllers.AddToWishlist)
		wishlist.DELETE("/:id", controllers.RemoveFromWishlist)
	}
}

func SetupOrderRoutes(r *gin.Engine, g guards) {
	orders := r.Group("/orders", g.auth)
	{
		orders.GET("", controllers.GetOrders)
		orders.POST("", controllers.CreateOrder)
		orders.GET("/:id", controllers.GetOrderByID)
		orders.GET("/:id/invoice", controllers.GetOrderInvoice)
		orders.PATCH("/:id", g.admin, controllers.UpdateOrder)
	}
}

func SetupAccountRoutes(r *gin.Engine, g guards) {
	withdraw := r.Group("/withdraw", g.auth)
	{
		withdraw.GET("", controllers.GetWithdraws)
		withdraw.GET("/balance", controllers.GetWithdrawBalance)
		withdraw.POST("", controllers.RequestWithdraw)
		withdraw.PATCH("/:id", g.admin, controllers.DecideWithdraw)
	}

	r.GET("/packages", g.optional, controllers.GetPackages)
	r.POST("/packages", g.auth, g.admin, controllers.CreatePackage)
	r.PATCH("/packages/:id", g.auth, g.admin, controllers.UpdatePackage)

	buy := r.Group("/buy-package", g.auth)
	{
		buy.POST("", controllers.BuyPackage)
		buy.GET("", controllers.GetPackagePurchases)
		buy.PATCH("/:id", g.admin, controllers.DecidePackagePurchase)
	}

	gifts := r.Group("/gifts", g.auth)
	{
		gifts.GET("", controllers.GetGifts)
		gifts.POST("", controllers.CreateGift)
		gifts.PATCH("/:id", g.admin, controllers.UpdateGiftStatus)
	}

	classes := r.Group("/class-requests", g.auth)
	{
		classes.GET("", controllers.GetClassRequests)
		classes.POST("", controllers.CreateClassRequest)
		classes.PATCH("/:id", g.admin, controllers.UpdateClassStatus)
	}
}

func SetupContentRoutes(r *gin.Engine, g guards) {
	r.GET("/telegram_group", controllers.GetSiteContent(models.ContentTelegramGroup))
	r.POST("/telegram_group", g.auth, g.admin, controllers.SetTelegramGroup)

	r.GET("/website-logo", controllers.GetSiteContent(models.ContentWebsiteLogo))
	r.POST("/website-logo", g.auth, g.admin, controllers.SetWebsiteLogo)

	r.GET("/contact-info", controllers.GetSiteContent(models.ContentContactInfo))
	r.POST("/contact-info", g.auth, g.admin, controllers.SetContactInfo)
}
