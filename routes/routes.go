package routes

import (
	"net/http"

	"catalog-admin/controllers"
	"catalog-admin/handler"
	"catalog-admin/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(router *gin.Engine, app *App) {
	cfg := app.Config
	log := app.Logger

	authCtrl := &controllers.AuthController{Auth: app.Auth, Config: cfg, Log: log}
	productCtrl := &controllers.ProductController{Catalog: app.Catalog, Sessions: app.Sessions, Log: log}
	categoryCtrl := &controllers.CategoryController{Catalog: app.Catalog, Sessions: app.Sessions, Log: log}
	tagCtrl := &controllers.TagController{Catalog: app.Catalog, Log: log}
	draftCtrl := &controllers.ProductDraftController{Sessions: app.Sessions, Log: log}
	categoryDraftCtrl := &controllers.CategoryDraftController{Sessions: app.Sessions, Log: log}
	previewCtrl := &controllers.PreviewController{Sessions: app.Sessions, Log: log}

	router.Use(middleware.RouteGuard(cfg.ProtectedPrefixes, cfg.LoginPath))

	router.GET("/", gin.WrapF(handler.Handler))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.POST("/api/auth/login", authCtrl.Login)
	router.POST("/api/auth/logout", authCtrl.Logout)

	router.GET("/previews/:id", middleware.RequireToken(cfg.JWTSecret), previewCtrl.ServePreview)

	api := router.Group("/api")
	api.Use(middleware.RequireToken(cfg.JWTSecret))
	{
		api.GET("/auth/me", authCtrl.Me)

		api.GET("/products", productCtrl.GetAllProducts)
		api.POST("/products/refresh", productCtrl.RefreshProducts)
		api.DELETE("/products/:id", productCtrl.DeleteProduct)
		api.POST("/products/:id/edit", productCtrl.EditProduct)

		api.GET("/categories", categoryCtrl.GetCategories)
		api.POST("/categories/refresh", categoryCtrl.RefreshCategories)
		api.DELETE("/categories/:id", categoryCtrl.DeleteCategory)
		api.POST("/categories/:id/edit", categoryCtrl.EditCategory)

		api.GET("/tags", tagCtrl.GetTags)

		api.GET("/drafts", draftCtrl.ListDrafts)

		products := api.Group("/drafts/products")
		products.POST("", draftCtrl.OpenDraft)
		products.GET("/:sid", draftCtrl.GetDraft)
		products.PATCH("/:sid", draftCtrl.UpdateDraft)
		products.DELETE("/:sid", draftCtrl.CloseDraft)
		products.POST("/:sid/resume", draftCtrl.ResumeDraft)
		products.GET("/:sid/tags/suggest", draftCtrl.SuggestTags)
		products.POST("/:sid/tags", draftCtrl.AddTag)
		products.DELETE("/:sid/tags/:value", draftCtrl.RemoveTag)
		products.POST("/:sid/variants", draftCtrl.AddVariant)
		products.PATCH("/:sid/variants/:index", draftCtrl.UpdateVariant)
		products.DELETE("/:sid/variants/:index", draftCtrl.RemoveVariant)
		products.POST("/:sid/media/images", draftCtrl.StageImages)
		products.POST("/:sid/media/thumbnail", draftCtrl.StageThumbnail)
		products.DELETE("/:sid/media/:slot/:index", draftCtrl.RemoveStaged)
		products.POST("/:sid/media/:slot/upload", draftCtrl.Upload)
		products.DELETE("/:sid/images", draftCtrl.RemoveImage)
		products.POST("/:sid/submit", draftCtrl.Submit)

		categories := api.Group("/drafts/categories")
		categories.POST("", categoryDraftCtrl.OpenDraft)
		categories.GET("/:sid", categoryDraftCtrl.GetDraft)
		categories.PATCH("/:sid", categoryDraftCtrl.UpdateDraft)
		categories.DELETE("/:sid", categoryDraftCtrl.CloseDraft)
		categories.POST("/:sid/submit", categoryDraftCtrl.Submit)
	}
}
