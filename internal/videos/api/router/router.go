package router

import (
	"video_transcode_service/internal/videos/api/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册影片相关的路由
func RegisterRoutes(app *fiber.App, videoHandler *handlers.VideoHandler) {
	app.Get("/videos", videoHandler.List)
	app.Post("/videos", videoHandler.Upload)
	app.Post("/videos/presign", videoHandler.Presign)
	app.Post("/videos/complete", videoHandler.CompleteUpload)
	app.Get("/videos/:id", videoHandler.GetOne)
	app.Get("/videos/:id/download/:variant", videoHandler.Download)
}
