package main

import (
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Isba24ha/barliberty-sub000/internal/database"
	"github.com/Isba24ha/barliberty-sub000/internal/router"
	"github.com/Isba24ha/barliberty-sub000/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	utils.InitLogger()

	dbConfig := database.Config{
		Host:        utils.Getenv("DB_HOST", "localhost"),
		Port:        utils.Getenv("DB_PORT", "5432"),
		User:        utils.Getenv("DB_USER", "pos_user"),
		Password:    utils.Getenv("DB_PASSWORD", "pos_password"),
		Name:        utils.Getenv("DB_NAME", "bar_pos_db"),
		SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath:  utils.Getenv("DB_SCHEMA_PATH", ""),
		MaxOpen:     utils.GetenvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdle:     utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
		MaxLifetime: time.Duration(utils.GetenvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		MaxIdleTime: time.Duration(utils.GetenvInt("DB_CONN_MAX_IDLE_MIN", 5)) * time.Minute,
	}
	database.InitDB(dbConfig)
	utils.LogInfo("Database initialized", map[string]interface{}{"host": dbConfig.Host, "name": dbConfig.Name})

	// money: monetary amounts are limited to two decimal places.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			amount := fl.Field().Float()
			return amount == math.Round(amount*100)/100
		})
	}

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, database.GetDB())

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
