package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
	"github.com/BthnIsler/finoria/internal/usecase/pricing"
)

type snapshotResponse struct {
	Date      string                     `json:"date"`
	Total     decimal.Decimal            `json:"total"`
	Breakdown map[string]decimal.Decimal `json:"breakdown"`
}

func toSnapshotResponse(snap domain.WealthSnapshot) snapshotResponse {
	breakdown := make(map[string]decimal.Decimal, len(snap.Breakdown))
	for category, value := range snap.Breakdown {
		breakdown[string(category)] = value
	}
	return snapshotResponse{Date: snap.Date, Total: snap.Total, Breakdown: breakdown}
}

type refreshResponse struct {
	Prices   map[string]decimal.Decimal `json:"prices"`
	Snapshot snapshotResponse           `json:"snapshot"`
	Holdings []holdingResponse          `json:"holdings"`
}

// handleRefresh runs one full cycle: fetch prices for everything the
// user holds, apply them, then record a wealth snapshot
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	hs, err := s.svc.Holdings.List(r.Context(), userID)
	if err != nil {
		mapError(w, err)
		return
	}

	prices := s.svc.Pricing.FetchAll(r.Context(), pricing.RequestFor(hs))

	hs, err = s.svc.Holdings.ApplyPrices(r.Context(), userID, prices)
	if err != nil {
		mapError(w, err)
		return
	}

	snap := s.svc.Snapshots.Record(r.Context(), userID, hs)

	writeJSON(w, http.StatusOK, refreshResponse{
		Prices:   prices,
		Snapshot: toSnapshotResponse(snap),
		Holdings: toHoldingResponses(hs),
	})
}

func (s *Server) handleDailyHistory(w http.ResponseWriter, r *http.Request) {
	daily := s.svc.Snapshots.DailyFor(r.Context(), userFrom(r))
	resp := make([]snapshotResponse, 0, len(daily))
	for _, snap := range daily {
		resp = append(resp, toSnapshotResponse(snap))
	}
	writeJSON(w, http.StatusOK, resp)
}

type hourlyResponse struct {
	Timestamp time.Time       `json:"timestamp"`
	Total     decimal.Decimal `json:"total"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
}

func (s *Server) handleHourlyHistory(w http.ResponseWriter, r *http.Request) {
	hourly := s.svc.Snapshots.Hourly()
	resp := make([]hourlyResponse, 0, len(hourly))
	for _, snap := range hourly {
		resp = append(resp, hourlyResponse{
			Timestamp: snap.Timestamp,
			Total:     snap.Total,
			Open:      snap.Open,
			High:      snap.High,
			Low:       snap.Low,
			Close:     snap.Close,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type assetPointResponse struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
}

func (s *Server) handleHoldingHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	points := s.svc.Snapshots.AssetSeries(id)
	resp := make([]assetPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, assetPointResponse{Timestamp: p.Timestamp, Price: p.Price, Value: p.Value})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Snapshots.Reset(r.Context(), userFrom(r)); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
