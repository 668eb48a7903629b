package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tokenledger/core"
	ledgererrors "tokenledger/core/errors"
	"tokenledger/crypto"
	"tokenledger/native/admin"
)

const maxPageSize = 500

type handlers struct {
	program *core.Program
	logger  *slog.Logger
}

type statusResponse struct {
	Name          string              `json:"name"`
	Symbol        string              `json:"symbol"`
	Decimals      uint8               `json:"decimals"`
	Description   string              `json:"description,omitempty"`
	ExternalLinks admin.ExternalLinks `json:"externalLinks"`
	MaxSupply     string              `json:"maxSupply"`
	TotalSupply   string              `json:"totalSupply"`
	Holders       int                 `json:"holders"`
	Paused        bool                `json:"paused"`
	Killed        bool                `json:"killed"`
	Inheritor     string              `json:"inheritor,omitempty"`
}

type holdingResponse struct {
	Actor  string `json:"actor"`
	Amount string `json:"amount"`
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	heir, killed := h.program.Inheritor()
	if killed {
		writeJSON(w, http.StatusOK, statusResponse{Killed: true, Inheritor: heir.String()})
		return
	}
	info, err := h.program.Info()
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Name:          info.Name,
		Symbol:        info.Symbol,
		Decimals:      info.Decimals,
		Description:   info.Description,
		ExternalLinks: info.ExternalLinks,
		MaxSupply:     info.MaxSupply.Dec(),
		TotalSupply:   info.TotalSupply.Dec(),
		Holders:       info.Holders,
		Paused:        info.Paused,
	})
}

func (h *handlers) balances(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	take, err := queryInt(r, "take", 100)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if take > maxPageSize {
		take = maxPageSize
	}
	page, err := h.program.Balances(skip, take)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	out := make([]holdingResponse, 0, len(page))
	for _, holding := range page {
		out = append(out, holdingResponse{Actor: holding.Actor.String(), Amount: holding.Amount.Dec()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) balanceOf(w http.ResponseWriter, r *http.Request) {
	actor, err := crypto.ParseActorID(chi.URLParam(r, "actor"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	balance, err := h.program.BalanceOf(actor)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holdingResponse{Actor: actor.String(), Amount: balance.Dec()})
}

func (h *handlers) allowance(w http.ResponseWriter, r *http.Request) {
	owner, err := crypto.ParseActorID(chi.URLParam(r, "owner"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("owner: %w", err))
		return
	}
	spender, err := crypto.ParseActorID(chi.URLParam(r, "spender"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("spender: %w", err))
		return
	}
	amount, err := h.program.Allowance(owner, spender)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":   owner.String(),
		"spender": spender.String(),
		"amount":  amount.Dec(),
	})
}

func (h *handlers) rolesOf(w http.ResponseWriter, r *http.Request) {
	actor, err := crypto.ParseActorID(chi.URLParam(r, "actor"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	names, err := h.program.RolesOf(actor)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"actor": actor.String(), "roles": names})
}

func (h *handlers) writeLedgerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ledgererrors.ErrTerminated) {
		status = http.StatusGone
	} else {
		h.logger.Error("status query failed", slog.String("result", ledgererrors.Kind(err)), slog.Any("error", err))
	}
	writeJSONError(w, status, err)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
