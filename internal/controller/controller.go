package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"agromarket/internal/models"
)

// maxBodySize caps request bodies; the largest request is a product with its
// description and grades.
const maxBodySize = 64 << 10

type Service interface {
	CreateProduct(ctx context.Context, actor models.Actor, product models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, actor models.Actor, product models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, actor models.Actor, productId string) error
	GetProduct(ctx context.Context, actor models.Actor, productId string) (models.Product, error)
	ListProducts(ctx context.Context, actor models.Actor, filter models.ProductFilter) ([]models.Product, error)

	CreateRFQ(ctx context.Context, actor models.Actor, rfq models.RFQ) (models.RFQ, error)
	UpdateRFQ(ctx context.Context, actor models.Actor, rfq models.RFQ) (models.RFQ, error)
	DeleteRFQ(ctx context.Context, actor models.Actor, rfqId string) error
	GetRFQ(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error)
	ListRFQs(ctx context.Context, actor models.Actor, filter models.RFQFilter) ([]models.RFQ, error)

	SubmitBid(ctx context.Context, actor models.Actor, bid models.Bid) (models.Bid, error)
	AcceptBid(ctx context.Context, actor models.Actor, bidId string) (models.Order, error)
	ListBids(ctx context.Context, actor models.Actor, filter models.BidFilter) ([]models.Bid, error)

	AdvanceOrderStatus(ctx context.Context, actor models.Actor, orderId string, status models.OrderStatus) (models.Order, error)
	AttachShippingDetails(ctx context.Context, actor models.Actor, orderId string, details models.ShippingDetails) (models.Order, error)
	RecordShipping(ctx context.Context, actor models.Actor, orderId string, details models.ShippingDetails) (models.Order, error)
	PostMessage(ctx context.Context, actor models.Actor, orderId, text string) (models.Order, error)
	GetOrder(ctx context.Context, actor models.Actor, orderId string) (models.Order, error)
	ListOrders(ctx context.Context, actor models.Actor, filter models.OrderFilter) ([]models.Order, error)

	Snapshot(ctx context.Context, actor models.Actor) (models.Snapshot, error)
}

// TokenParser turns a bearer token into the acting user.
type TokenParser interface {
	Parse(token string) (models.Actor, error)
}

type Controller struct {
	service Service
	tokens  TokenParser
	logger  *zap.Logger
}

func NewController(service Service, tokens TokenParser, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

type actorKey struct{}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by Authenticate. The zero Actor is
// returned when there is none, which the ledger rejects.
func ActorFrom(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}

// Authenticate requires an "Authorization: Bearer <token>" header and puts
// the decoded actor into the request context.
func (c *Controller) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.errorResponse(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		actor, err := c.tokens.Parse(token)
		if err != nil {
			c.logger.Debug("rejected token", zap.Error(err))
			c.errorResponse(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// GET /api/snapshot
func (c *Controller) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := c.service.Snapshot(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, snap)
}

//// Products

// GET /api/products
func (c *Controller) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	products, err := c.service.ListProducts(r.Context(), ActorFrom(r.Context()), models.ProductFilter{
		SellerId: query.Get("sellerId"),
		Search:   query.Get("search"),
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, products)
}

// POST /api/products
func (c *Controller) NewProduct(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseProductReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.service.CreateProduct(r.Context(), ActorFrom(r.Context()), req.Model(""))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, product)
}

// GET /api/products/{productId}
func (c *Controller) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.service.GetProduct(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, product)
}

// PUT /api/products/{productId}
func (c *Controller) EditProduct(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseProductReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.service.UpdateProduct(r.Context(), ActorFrom(r.Context()), req.Model(chi.URLParam(r, "productId")))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, product)
}

// DELETE /api/products/{productId}
func (c *Controller) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := c.service.DeleteProduct(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

//// RFQs

// GET /api/rfqs
func (c *Controller) ListRFQs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rfqs, err := c.service.ListRFQs(r.Context(), ActorFrom(r.Context()), models.RFQFilter{
		BuyerId: query.Get("buyerId"),
		Status:  models.RFQStatus(query.Get("status")),
		Search:  query.Get("search"),
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, rfqs)
}

// POST /api/rfqs
func (c *Controller) NewRFQ(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseRFQReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rfq, err := c.service.CreateRFQ(r.Context(), ActorFrom(r.Context()), req.Model(""))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, rfq)
}

// GET /api/rfqs/{rfqId}
func (c *Controller) GetRFQ(w http.ResponseWriter, r *http.Request) {
	rfq, err := c.service.GetRFQ(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "rfqId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, rfq)
}

// PUT /api/rfqs/{rfqId}
func (c *Controller) EditRFQ(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseRFQReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rfq, err := c.service.UpdateRFQ(r.Context(), ActorFrom(r.Context()), req.Model(chi.URLParam(r, "rfqId")))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, rfq)
}

// DELETE /api/rfqs/{rfqId}
func (c *Controller) DeleteRFQ(w http.ResponseWriter, r *http.Request) {
	err := c.service.DeleteRFQ(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "rfqId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

//// Bids

// GET /api/rfqs/{rfqId}/bids
func (c *Controller) RFQBids(w http.ResponseWriter, r *http.Request) {
	bids, err := c.service.ListBids(r.Context(), ActorFrom(r.Context()), models.BidFilter{
		RFQId:  chi.URLParam(r, "rfqId"),
		Status: models.BidStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, bids)
}

// POST /api/rfqs/{rfqId}/bids
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.SubmitBid(r.Context(), ActorFrom(r.Context()), models.Bid{
		RFQId:      chi.URLParam(r, "rfqId"),
		PricePerKg: req.PricePerKg,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, bid)
}

// GET /api/bids/my
func (c *Controller) MyBids(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	bids, err := c.service.ListBids(r.Context(), actor, models.BidFilter{
		SellerId: actor.ID,
		Status:   models.BidStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, bids)
}

// POST /api/bids/{bidId}/accept
func (c *Controller) AcceptBid(w http.ResponseWriter, r *http.Request) {
	order, err := c.service.AcceptBid(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "bidId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, order)
}

//// Orders

// GET /api/orders
func (c *Controller) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	orders, err := c.service.ListOrders(r.Context(), ActorFrom(r.Context()), models.OrderFilter{
		Status: models.OrderStatus(query.Get("status")),
		Search: query.Get("search"),
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, orders)
}

// GET /api/orders/{orderId}
func (c *Controller) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := c.service.GetOrder(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, order)
}

// PUT /api/orders/{orderId}/status
func (c *Controller) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseStatusReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.service.AdvanceOrderStatus(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, order)
}

// PUT /api/orders/{orderId}/shipping
func (c *Controller) ShipOrder(w http.ResponseWriter, r *http.Request) {
	c.shipping(w, r, c.service.AttachShippingDetails)
}

// PATCH /api/orders/{orderId}/shipping
func (c *Controller) EditShipping(w http.ResponseWriter, r *http.Request) {
	c.shipping(w, r, c.service.RecordShipping)
}

func (c *Controller) shipping(w http.ResponseWriter, r *http.Request, apply func(context.Context, models.Actor, string, models.ShippingDetails) (models.Order, error)) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseShippingReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := apply(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "orderId"), req.Model())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusOK, order)
}

// POST /api/orders/{orderId}/messages
func (c *Controller) NewMessage(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(w, r)
	if err != nil {
		c.bodyErrorResponse(w, err)
		return
	}

	req, err := ParseMessageReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.service.PostMessage(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "orderId"), req.Text)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, http.StatusCreated, order)
}

// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		c.logger.Error("controller.Controller.errorResponse", zap.Error(err))
		return
	}

	_, err = w.Write(data)
	if err != nil {
		c.logger.Error("controller.Controller.errorResponse", zap.Error(err))
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidActor):
		c.errorResponse(w, http.StatusUnauthorized, "no valid user supplied")
	case errors.Is(err, models.ErrValidation):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		c.errorResponse(w, http.StatusForbidden, "user have no permission for requested action")
	case errors.Is(err, models.ErrNoProduct):
		c.errorResponse(w, http.StatusNotFound, "requested product does not exist")
	case errors.Is(err, models.ErrNoRFQ):
		c.errorResponse(w, http.StatusNotFound, "requested rfq does not exist")
	case errors.Is(err, models.ErrNoBid):
		c.errorResponse(w, http.StatusNotFound, "requested bid does not exist")
	case errors.Is(err, models.ErrNoOrder):
		c.errorResponse(w, http.StatusNotFound, "requested order does not exist")
	case errors.Is(err, models.ErrDuplicateBid):
		c.errorResponse(w, http.StatusConflict, "seller already has a bid on this rfq")
	case errors.Is(err, models.ErrRFQClosed):
		c.errorResponse(w, http.StatusConflict, "requested rfq is already closed")
	case errors.Is(err, models.ErrBidFinalized):
		c.errorResponse(w, http.StatusConflict, "requested bid is already accepted or rejected")
	case errors.Is(err, models.ErrInvalidTransition):
		c.errorResponse(w, http.StatusConflict, "requested status change is not allowed")
	default:
		c.logger.Error("unexpected service error", zap.Error(err))
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, status int, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(d)
	if err != nil {
		c.logger.Error("controller.Controller.marshalResponse", zap.Error(err))
	}
}

func (c *Controller) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	src := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer src.Close()
	return io.ReadAll(src)
}

func (c *Controller) bodyErrorResponse(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		return
	}
	c.errorResponse(w, http.StatusBadRequest, "could not read request body")
}
