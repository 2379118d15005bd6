package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

// PaymentServicer defines the service methods needed by payment handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type PaymentServicer interface {
	RecordPayment(ctx context.Context, req service.PaymentRequest) (*service.PaymentResult, error)
}

// PaymentStore defines the database methods needed by payment read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PaymentStore interface {
	ListTransactionsByOrder(ctx context.Context, orderID int64) ([]database.Transaction, error)
}

// PaymentHandler handles payment endpoints nested under /orders/{id}.
type PaymentHandler struct {
	svc      PaymentServicer
	store    PaymentStore
	notifier Notifier
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer, store PaymentStore, notifier Notifier) *PaymentHandler {
	return &PaymentHandler{svc: svc, store: store, notifier: notifier}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted at /orders/{id}/payments.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
}

type createPaymentRequest struct {
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"payment_method"`
	TransactionID string      `json:"transaction_id"`
}

type paymentResponse struct {
	Order       orderPaymentView    `json:"order"`
	Transaction transactionResponse `json:"transaction"`
	Change      string              `json:"change"`
}

// orderPaymentView is the slice of the order the register cares about
// after a payment.
type orderPaymentView struct {
	ID            int64   `json:"id"`
	OrderNumber   string  `json:"order_number"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
	TotalAmount   string  `json:"total_amount"`
}

// Create handles POST /orders/{id}/payments.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	result, err := h.svc.RecordPayment(r.Context(), service.PaymentRequest{
		OrderID:        orderID,
		Amount:         amount,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: req.TransactionID,
	})
	if err != nil {
		writeServiceError(w, "record payment", err)
		return
	}

	resp := paymentResponse{
		Order:       toOrderPaymentView(result.Order),
		Transaction: toTransactionResponse(result.Transaction),
		Change:      result.Change.StringFixed(2),
	}

	h.notifier.Notify("order.paid", resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders/{id}/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	txns, err := h.store.ListTransactionsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]transactionResponse, len(txns))
	for i, t := range txns {
		resp[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toOrderPaymentView(o database.Order) orderPaymentView {
	view := orderPaymentView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   numericToString(o.TotalAmount),
	}
	if o.PaymentMethod.Valid {
		view.PaymentMethod = &o.PaymentMethod.String
	}
	return view
}
