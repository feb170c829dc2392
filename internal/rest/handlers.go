// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"errors"
	"net/http"

	"github.com/jeremyhahn/go-interactions/pkg/adapters/logger"
	"github.com/jeremyhahn/go-interactions/pkg/interaction"
)

// HandlerContext holds the dependencies shared by all handlers.
type HandlerContext struct {
	dispatcher *interaction.Dispatcher
	logger     logger.Logger
	health     HealthChecker
}

// NewHandlerContext creates a new handler context.
func NewHandlerContext(dispatcher *interaction.Dispatcher, log logger.Logger) *HandlerContext {
	return &HandlerContext{
		dispatcher: dispatcher,
		logger:     log,
	}
}

// SetHealthChecker wires the health checker used by the probe handlers.
func (h *HandlerContext) SetHealthChecker(checker HealthChecker) {
	h.health = checker
}

// InteractionsHandler handles POST /interactions. The body has already
// been authenticated by SignatureMiddleware; this handler only decodes
// and dispatches.
func (h *HandlerContext) InteractionsHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := verifiedBody(r.Context())
	if !ok {
		// Route wired without the signature gate; refuse to serve.
		h.logger.Error("Interactions handler reached without verified body")
		writeError(w, ErrInternalError, http.StatusInternalServerError)
		return
	}

	resp, err := h.dispatcher.Dispatch(r.Context(), body)
	if err != nil {
		switch {
		case errors.Is(err, interaction.ErrDecode),
			errors.Is(err, interaction.ErrMalformedCustomID):
			writeError(w, ErrBadRequest, http.StatusBadRequest)
		default:
			h.logger.Error("Dispatch failed", logger.Error(err))
			writeError(w, ErrInternalError, http.StatusInternalServerError)
		}
		return
	}

	if err := writeJSON(w, resp, http.StatusOK); err != nil {
		h.logger.Error("Failed to write response", logger.Error(err))
	}
}
