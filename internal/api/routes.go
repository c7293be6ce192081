package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olexvol/liftlog/internal/realtime"
	"olexvol/liftlog/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	hub *realtime.Hub,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	wsHandler := NewWSHandler(hub)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// Event stream. One connection serves any number of resource
		// subscriptions.
		protected.GET("/ws", wsHandler.Serve)

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PATCH("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)

			workoutGroup.POST("/:id/start", workoutHandler.StartWorkout)
			workoutGroup.POST("/:id/end", workoutHandler.EndWorkout)

			workoutGroup.POST("/:id/exercises", workoutHandler.CreateExercise)
			workoutGroup.POST("/:id/supersets", workoutHandler.CreateSuperset)
		}

		supersetGroup := protected.Group("/supersets")
		{
			supersetGroup.PATCH("/:id", workoutHandler.UpdateSuperset)
			supersetGroup.DELETE("/:id", workoutHandler.DeleteSuperset)
			supersetGroup.POST("/:id/exercises", workoutHandler.CreateExerciseInSuperset)
		}

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.PATCH("/:id", workoutHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", workoutHandler.DeleteExercise)
			exerciseGroup.POST("/:id/sets", workoutHandler.CreateSet)
			exerciseGroup.POST("/:id/dropsets", workoutHandler.CreateDropset)
			exerciseGroup.POST("/:id/image", workoutHandler.UploadExerciseImage)
		}

		setGroup := protected.Group("/sets")
		{
			setGroup.PATCH("/:id", workoutHandler.UpdateSet)
			setGroup.DELETE("/:id", workoutHandler.DeleteSet)
		}

		dropsetGroup := protected.Group("/dropsets")
		{
			dropsetGroup.PATCH("/:id", workoutHandler.UpdateDropset)
			dropsetGroup.DELETE("/:id", workoutHandler.DeleteDropset)
			dropsetGroup.POST("/:id/subsets", workoutHandler.CreateSubSet)
		}

		subSetGroup := protected.Group("/subsets")
		{
			subSetGroup.PATCH("/:id", workoutHandler.UpdateSubSet)
			subSetGroup.DELETE("/:id", workoutHandler.DeleteSubSet)
		}
	}
}
