package middleware

import (
	"time"

	"eloan-must/internal/config"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const allowedHeaders = "Origin,Content-Type,Accept,Authorization,X-Request-ID"

// Setup installs the global middleware chain
func Setup(app *fiber.App, cfg *config.Config) {
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDev()}))
	app.Use(requestid.New())

	if cfg.Metrics.Enabled {
		app.Use(Metrics())
	}

	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	// Swagger UI loads cross-origin assets, so no embedder policy
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-site",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	app.Use(rateLimiter(cfg.Limits.General, "", "Terlalu banyak permintaan. Silakan tunggu sebentar."))

	format := "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n"
	if cfg.IsProd() {
		format = "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n"
	}
	app.Use(logger.New(logger.Config{
		Format:     format,
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// credentials are only allowed with an explicit origin list
	origins := cfg.GetAllowedOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    "Content-Disposition,X-Request-ID",
		AllowCredentials: origins != "*",
	}))
}

// AuthRateLimiter limits login and token refresh per IP
func AuthRateLimiter(perMinute int) fiber.Handler {
	return rateLimiter(perMinute, "-auth", "Terlalu banyak percobaan login. Silakan tunggu 1 menit.")
}

// StrictRateLimiter limits password reset per IP
func StrictRateLimiter(perMinute int) fiber.Handler {
	return rateLimiter(perMinute, "-strict", "Silakan tunggu sebentar sebelum mencoba lagi.")
}

func rateLimiter(perMinute int, keySuffix, message string) fiber.Handler {
	if perMinute < 1 {
		perMinute = 1
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + keySuffix
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// CustomErrorHandler answers errors that escape handlers with the standard envelope
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Terjadi kesalahan pada server"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return response.Error(c, code, message)
}
