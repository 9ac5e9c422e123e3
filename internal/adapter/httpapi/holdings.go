package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
	"github.com/BthnIsler/finoria/internal/usecase/holdings"
)

type holdingResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Category         domain.Category  `json:"category"`
	ProviderID       string           `json:"providerId,omitempty"`
	Quantity         decimal.Decimal  `json:"quantity"`
	PurchasePrice    decimal.Decimal  `json:"purchasePrice"`
	PurchaseCurrency string           `json:"purchaseCurrency"`
	CurrentPrice     decimal.Decimal  `json:"currentPrice"`
	CurrentValue     decimal.Decimal  `json:"currentValue"`
	ManualPrice      *decimal.Decimal `json:"manualPrice,omitempty"`
	ProfitLoss       decimal.Decimal  `json:"profitLoss"`
	ProfitLossPct    decimal.Decimal  `json:"profitLossPct"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func toHoldingResponse(h *domain.Holding) holdingResponse {
	pl, plPct := holdings.ProfitLoss(h)
	resp := holdingResponse{
		ID:               h.ID,
		Name:             h.Name,
		Category:         h.Category,
		ProviderID:       h.ProviderID,
		Quantity:         h.Quantity,
		PurchasePrice:    h.PurchasePrice,
		PurchaseCurrency: h.PurchaseCurrency,
		CurrentPrice:     h.EffectivePrice(),
		CurrentValue:     h.CurrentValue(),
		ProfitLoss:       pl,
		ProfitLossPct:    plPct,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
	if v, ok := h.ManualPrice.Value(); ok {
		resp.ManualPrice = &v
	}
	return resp
}

func toHoldingResponses(hs []*domain.Holding) []holdingResponse {
	out := make([]holdingResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, toHoldingResponse(h))
	}
	return out
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	hs, err := s.svc.Holdings.List(r.Context(), userFrom(r))
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHoldingResponses(hs))
}

type createHoldingRequest struct {
	Name             string           `json:"name"`
	Category         domain.Category  `json:"category"`
	ProviderID       string           `json:"providerId"`
	Quantity         decimal.Decimal  `json:"quantity"`
	PurchasePrice    decimal.Decimal  `json:"purchasePrice"`
	PurchaseCurrency string           `json:"purchaseCurrency"`
	ManualPrice      *decimal.Decimal `json:"manualPrice"`
}

func (s *Server) handleCreateHolding(w http.ResponseWriter, r *http.Request) {
	var req createHoldingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := holdings.CreateInput{
		UserID:           userFrom(r),
		Name:             req.Name,
		Category:         req.Category,
		ProviderID:       req.ProviderID,
		Quantity:         req.Quantity,
		PurchasePrice:    req.PurchasePrice,
		PurchaseCurrency: req.PurchaseCurrency,
	}
	if input.PurchaseCurrency == "" {
		input.PurchaseCurrency = s.currency
	}
	if req.ManualPrice != nil {
		input.ManualPrice = domain.PriceOf(*req.ManualPrice)
	}

	h, err := s.svc.Holdings.Create(r.Context(), input)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHoldingResponse(h))
}

type updateHoldingRequest struct {
	Name          *string          `json:"name"`
	Quantity      *decimal.Decimal `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	ManualPrice   *decimal.Decimal `json:"manualPrice"`
}

func (s *Server) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateHoldingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := holdings.UpdateInput{
		Name:          req.Name,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	}
	if req.ManualPrice != nil {
		manual := domain.PriceOf(*req.ManualPrice)
		input.ManualPrice = &manual
	}

	h, err := s.svc.Holdings.Update(r.Context(), id, input)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHoldingResponse(h))
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.svc.Holdings.Delete(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sellRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

type sellResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Holding     *holdingResponse    `json:"holding,omitempty"`
}

func (s *Server) handleSellHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req sellRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.svc.Holdings.Sell(r.Context(), id, req.Quantity, req.PricePerUnit)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := sellResponse{Transaction: toTransactionResponse(result.Transaction)}
	if result.Holding != nil {
		h := toHoldingResponse(result.Holding)
		resp.Holding = &h
	}
	writeJSON(w, http.StatusOK, resp)
}

type transactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	HoldingID    uuid.UUID       `json:"holdingId"`
	HoldingName  string          `json:"holdingName"`
	Category     domain.Category `json:"category"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	Date         time.Time       `json:"date"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		HoldingID:    tx.HoldingID,
		HoldingName:  tx.HoldingName,
		Category:     tx.Category,
		Type:         string(tx.Type),
		Quantity:     tx.Quantity,
		PricePerUnit: tx.PricePerUnit,
		TotalValue:   tx.TotalValue,
		Date:         tx.Date,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Holdings.ListTransactions(r.Context(), userFrom(r))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid holding id")
		return uuid.Nil, false
	}
	return id, true
}
