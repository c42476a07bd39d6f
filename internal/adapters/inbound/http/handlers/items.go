package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/usecases"
	"github.com/architeacher/items/internal/usecases/commands"
	"github.com/architeacher/items/internal/usecases/queries"
	"github.com/architeacher/items/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	itemIDParam = "id"

	ItemsPath = "/api/items"
)

type (
	itemRequest struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}

	itemResponse struct {
		*model.Item
		Cached bool `json:"cached"`
	}

	itemListResponse struct {
		Items  []*model.Item `json:"items"`
		Count  int           `json:"count"`
		Cached bool          `json:"cached"`
	}

	deleteResponse struct {
		Message string       `json:"message"`
		ID      model.ItemID `json:"id"`
	}

	ItemsHandler struct {
		app          *usecases.WebApplication
		logger       logger.Logger
		maxBodyBytes int64
	}
)

func NewItemsHandler(app *usecases.WebApplication, log logger.Logger, maxBodyBytes int64) *ItemsHandler {
	return &ItemsHandler{
		app:          app,
		logger:       log,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *ItemsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.ListItems.Execute(r.Context(), queries.ListItemsQuery{})
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	list := result.Value
	if list == nil {
		list = model.NewItemList(nil)
	}

	writeJSONResponse(w, http.StatusOK, itemListResponse{
		Items:  list.Items,
		Count:  list.Count,
		Cached: result.Hit,
	})
}

func (h *ItemsHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseItemID(chi.URLParam(r, itemIDParam))
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	result, err := h.app.Queries.GetItem.Execute(r.Context(), queries.GetItemQuery{ID: id})
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, itemResponse{Item: result.Value, Cached: result.Hit})
}

func (h *ItemsHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.app.Commands.CreateItem.Handle(r.Context(), commands.CreateItemCommand{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", ItemsPath, item.ID))
	writeJSONResponse(w, http.StatusCreated, itemResponse{Item: item})
}

func (h *ItemsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseItemID(chi.URLParam(r, itemIDParam))
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.app.Commands.UpdateItem.Handle(r.Context(), commands.UpdateItemCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, itemResponse{Item: item})
}

func (h *ItemsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseItemID(chi.URLParam(r, itemIDParam))
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	deleted, err := h.app.Commands.DeleteItem.Handle(r.Context(), commands.DeleteItemCommand{ID: id})
	if err != nil {
		h.writeDomainError(w, r, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, deleteResponse{Message: msgItemDeleted, ID: deleted})
}

func (h *ItemsHandler) decodeItemRequest(w http.ResponseWriter, r *http.Request) (itemRequest, bool) {
	var req itemRequest

	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	err := json.NewDecoder(body).Decode(&req)
	if err == nil {
		return req, true
	}

	var maxBytesErr *http.MaxBytesError

	if errors.As(err, &maxBytesErr) {
		writeErrorResponse(w, http.StatusRequestEntityTooLarge, codeInvalidJSON, "Request body too large")

		return itemRequest{}, false
	}

	writeErrorResponse(w, http.StatusBadRequest, codeInvalidJSON, msgInvalidRequestBody)

	return itemRequest{}, false
}
