package server

import (
	"errors"
	"net/http"

	"github.com/musegen/muse-server/internal/purchase"
)

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.purchases.Packages())
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	list, err := s.purchases.History(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPurchaseViews(list))
}

func (s *Server) handleRequestPurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credits    int64 `json:"credits"`
		PriceCents int64 `json:"price_cents"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	rec, err := s.purchases.Request(r.Context(), userFrom(r.Context()), req.Credits, req.PriceCents)
	if errors.Is(err, purchase.ErrUnknownPackage) {
		s.writeBadRequest(w, "no such credit package")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPurchaseView(rec))
}

func (s *Server) handleSelfReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credits    int64  `json:"credits"`
		PriceCents int64  `json:"price_cents"`
		BankRef    string `json:"bank_ref"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}

	rec, err := s.purchases.SelfReport(r.Context(), userFrom(r.Context()), req.Credits, req.PriceCents, req.BankRef)
	if errors.Is(err, purchase.ErrUnknownPackage) {
		s.writeBadRequest(w, "no such credit package")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPurchaseView(rec))
}
