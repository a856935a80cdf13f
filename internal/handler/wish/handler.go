package wish

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/wish-api/backend/internal/model/wish"
	"github.com/zhouzirui/wish-api/backend/pkg/utils"
)

const (
	itemMethods       = "GET, PUT, PATCH, DELETE"
	collectionMethods = "GET, POST"

	maxBodyBytes = 1 << 20
)

// Handler 心愿单服务的HTTP处理器
type Handler struct {
	wishes wish.Store
}

// New 创建心愿单处理器
func New(wishes wish.Store) *Handler {
	return &Handler{
		wishes: wishes,
	}
}

// RegisterRoutes 注册心愿单相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/wishes", h.handleCollection)
	r.HandleFunc("/wishes/{id}", h.handleItem)
	// "/wishes/" never matches {id}; route it here so a missing id gets the JSON 400
	r.HandleFunc("/wishes/", h.handleItem)
}

// handleCollection 处理 /wishes
func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		utils.RespondEmpty(w, http.StatusOK)
	case http.MethodGet:
		items, err := h.wishes.List(r.Context())
		if err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var payload wish.Wish
		if !decodeBody(w, r, &payload) {
			return
		}
		created, err := h.wishes.Create(r.Context(), payload)
		if err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, collectionMethods)
	}
}

// handleItem 处理 /wishes/{id}
func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	// preflight is answered before the id is inspected
	if r.Method == http.MethodOptions {
		utils.RespondEmpty(w, http.StatusOK)
		return
	}

	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Invalid wish ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, ok, err := h.wishes.FindByID(r.Context(), id)
		if err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		if !ok {
			utils.RespondError(w, http.StatusNotFound, "Wish not found")
			return
		}
		utils.RespondJSON(w, http.StatusOK, item)

	case http.MethodPut:
		var payload wish.Wish
		if !decodeBody(w, r, &payload) {
			return
		}
		updated, err := h.wishes.Update(r.Context(), id, payload)
		if err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, updated)

	case http.MethodPatch:
		var payload wish.Patch
		if !decodeBody(w, r, &payload) {
			return
		}
		patched, err := h.wishes.Patch(r.Context(), id, payload)
		if err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, patched)

	case http.MethodDelete:
		if err := h.wishes.Delete(r.Context(), id); err != nil {
			h.respondStoreError(w, r, err)
			return
		}
		utils.RespondEmpty(w, http.StatusNoContent)

	default:
		methodNotAllowed(w, r, itemMethods)
	}
}

// respondStoreError 根据错误类型映射HTTP状态码
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wish.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "Wish not found")
	case errors.Is(err, wish.ErrInvalidID):
		utils.RespondError(w, http.StatusBadRequest, "Invalid wish ID")
	default:
		log.Printf("[wish] %s %s failed: %v", r.Method, r.URL.Path, err)
		utils.RespondErrorDetail(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

// decodeBody rejects a bare JSON null, which would otherwise decode as an
// empty record or an empty patch.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	utils.RespondError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
}
