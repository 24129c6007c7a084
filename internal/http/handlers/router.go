package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "storefront/internal/log"
)

type AppOptions struct {
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit  int
	AccessLog  bool
	BodyLimit  int
	RateWindow time.Duration
}

func DefaultAppOptions() AppOptions {
	return AppOptions{RateLimit: 120, RateWindow: time.Minute, AccessLog: true, BodyLimit: 1 << 20}
}

// NewApp builds the fiber app with middlewares and routes.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 << 20
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    opts.BodyLimit,
		AppName:      "storefront",
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(helmet.New())
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: opts.RateWindow,
			// webhook deliveries and health checks are not throttled
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/webhook" || c.Path() == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	}

	// ---------- Orders & payments ----------
	app.Post("/orders", d.OrderHandler.Submit)
	app.Get("/orders/:id", d.OrderHandler.Get)
	app.Get("/users/:userId/orders", d.OrderHandler.History)
	app.Post("/payment-intents", d.PaymentHandler.CreateIntent)
	app.Post("/webhook", d.PaymentHandler.Webhook)

	// ---------- Catalog & reviews ----------
	app.Get("/products", d.ProductHandler.List)
	app.Get("/products/:slug", d.ProductHandler.Detail)
	app.Get("/products/:id/reviews", d.ReviewHandler.List)
	app.Post("/products/:id/reviews", d.ReviewHandler.Create)
	app.Post("/reviews", d.ReviewHandler.Create)

	// ---------- Cart ----------
	app.Get("/cart/:userId", d.CartHandler.View)
	app.Delete("/cart/:userId", d.CartHandler.Clear)
	app.Post("/cart/:userId/items", d.CartHandler.Add)
	app.Put("/cart/:userId/items/:productId", d.CartHandler.Update)
	app.Delete("/cart/:userId/items/:productId", d.CartHandler.Remove)

	// ---------- Funnel ----------
	app.Post("/subscribers", d.FunnelHandler.Subscribe)
	app.Post("/contact", d.FunnelHandler.Contact)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "route not found"})
	})
	return app
}
