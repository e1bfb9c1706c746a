package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/betledger/config"
	"github.com/rustyeddy/betledger/ledger"
	"github.com/rustyeddy/betledger/risk"
	"github.com/rustyeddy/betledger/wager"
)

func (s *Server) listWagers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records := s.ledger.Find(ledger.Filter{
		Status: wager.Status(q.Get("status")),
		Result: wager.Result(q.Get("result")),
		Tag:    q.Get("tag"),
	})
	respondJSON(w, http.StatusOK, map[string]any{
		"wagers": records,
		"count":  len(records),
	})
}

func (s *Server) createWager(w http.ResponseWriter, r *http.Request) {
	var p wager.Payload
	if err := decode(r, &p); err != nil {
		respondError(w, s.log, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	rec, err := s.ledger.Add(r.Context(), p)
	if err != nil {
		s.fail(w, "failed to add wager", err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) clearWagers(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Clear(r.Context()); err != nil {
		s.fail(w, "failed to clear ledger", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getWager(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "failed to get wager", err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) updateWager(w http.ResponseWriter, r *http.Request) {
	var p wager.Payload
	if err := decode(r, &p); err != nil {
		respondError(w, s.log, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	rec, err := s.ledger.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.fail(w, "failed to update wager", err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) removeWager(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "failed to remove wager", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settleRequest struct {
	Result wager.Result `json:"result"`
}

func (s *Server) settleWager(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			respondError(w, s.log, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}
	rec, err := s.ledger.Settle(r.Context(), chi.URLParam(r, "id"), req.Result)
	if err != nil {
		s.fail(w, "failed to settle wager", err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ledger.Summary())
}

func (s *Server) snapshots(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"snapshots": s.ledger.Snapshots(),
		"trend":     s.ledger.Trend(),
	})
}

// stake recommends the next stake. odds and probability are optional query
// parameters; Kelly sizing only applies when both are given.
func (s *Server) stake(w http.ResponseWriter, r *http.Request) {
	odds, err := parseFloatParam(r, "odds", 0)
	if err != nil {
		respondError(w, s.log, http.StatusBadRequest, "odds must be a number", nil)
		return
	}
	probability, err := parseFloatParam(r, "probability", 0)
	if err != nil {
		respondError(w, s.log, http.StatusBadRequest, "probability must be a number", nil)
		return
	}
	// Kelly needs an estimate of the chance of winning.
	if probability <= 0 {
		odds = 0
	}

	in := risk.InputsFor(s.ledger.Summary(), s.settings.Current(), odds, probability)
	respondJSON(w, http.StatusOK, risk.Recommend(in))
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.settings.Current())
}

func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	var p config.Patch
	if err := decode(r, &p); err != nil {
		respondError(w, s.log, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	cfg, err := s.settings.Update(r.Context(), p)
	if err != nil {
		s.fail(w, "failed to update config", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
