package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tool-market/internal/models"
	"tool-market/internal/services"
)

type ToolHandler struct {
	toolService *services.ToolService
	logger      zerolog.Logger
}

func NewToolHandler(toolService *services.ToolService, logger zerolog.Logger) *ToolHandler {
	return &ToolHandler{
		toolService: toolService,
		logger:      logger,
	}
}

func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.toolService.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tools)
}

func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := h.toolService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) UpsertTool(w http.ResponseWriter, r *http.Request) {
	var tool models.Tool
	if err := decodeJSON(w, r, &tool); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	res, err := h.toolService.Upsert(r.Context(), mux.Vars(r)["id"], &tool)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *ToolHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	var tool models.Tool
	if err := decodeJSON(w, r, &tool); err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}

	res, err := h.toolService.Create(r.Context(), &tool)
	if err != nil {
		respondWithAppError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
