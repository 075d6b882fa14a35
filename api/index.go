package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"catalog-admin/config"
	"catalog-admin/middleware"
	"catalog-admin/models"
	"catalog-admin/routes"

	"github.com/gin-gonic/gin"
)

var (
	router  *gin.Engine
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger := config.NewLogger(cfg)

		app, err := routes.NewApp(context.Background(), cfg, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize app")
			initErr = err
			return
		}

		router = gin.New()
		router.Use(gin.Recovery())
		router.Use(middleware.RequestLogger(logger))
		router.Use(middleware.CORSMiddleware(cfg.OriginURL))

		routes.SetupRoutes(router, app)
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Message: "Service unavailable", Error: initErr.Error()})
		return
	}
	router.ServeHTTP(w, r)
}
