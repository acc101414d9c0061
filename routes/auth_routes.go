package routes

import (
	"dropship-hub/controllers"

	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(r *gin.Engine, g guards) {
	users := r.Group("/users")
	{
		users.POST("", g.limit, g.auth, controllers.RegisterUser)
		users.GET("", g.auth, g.admin, controllers.GetUsers)
		users.GET("/me", g.auth, controllers.GetMe)
		users.GET("/me/referral-qr", g.auth, controllers.GetReferralQR)
		users.GET("/:id", g.auth, controllers.GetUserByID)
		users.PATCH("/:id", g.auth, controllers.UpdateUser)
	}
}
