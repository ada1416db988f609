package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"agromarket/internal/controller"
)

func NewRouter(c *controller.Controller, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", c.Ping)

		r.Group(func(r chi.Router) {
			r.Use(c.Authenticate)
			authenticated(r, c)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	return r
}

func authenticated(r chi.Router, c *controller.Controller) {
	r.Get("/snapshot", c.Snapshot)

	r.Get("/products", c.ListProducts)
	r.Post("/products", c.NewProduct)
	r.Get("/products/{productId}", c.GetProduct)
	r.Put("/products/{productId}", c.EditProduct)
	r.Delete("/products/{productId}", c.DeleteProduct)

	r.Get("/rfqs", c.ListRFQs)
	r.Post("/rfqs", c.NewRFQ)
	r.Get("/rfqs/{rfqId}", c.GetRFQ)
	r.Put("/rfqs/{rfqId}", c.EditRFQ)
	r.Delete("/rfqs/{rfqId}", c.DeleteRFQ)
	r.Get("/rfqs/{rfqId}/bids", c.RFQBids)
	r.Post("/rfqs/{rfqId}/bids", c.NewBid)

	r.Get("/bids/my", c.MyBids)
	r.Post("/bids/{bidId}/accept", c.AcceptBid)

	r.Get("/orders", c.ListOrders)
	r.Get("/orders/{orderId}", c.GetOrder)
	r.Put("/orders/{orderId}/status", c.SetOrderStatus)
	r.Put("/orders/{orderId}/shipping", c.ShipOrder)
	r.Patch("/orders/{orderId}/shipping", c.EditShipping)
	r.Post("/orders/{orderId}/messages", c.NewMessage)
}

// AccessLog logs one line per request with the chi request id.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("request",
					zap.String("requestId", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
