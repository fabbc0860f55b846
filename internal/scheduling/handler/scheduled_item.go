package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"darassa/internal/scheduling/service"
	apperrors "darassa/pkg/errors"
	httputil "darassa/pkg/http"
	"darassa/pkg/logger"
	"darassa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const allItemsPath = "/api/v1/scheduled-items"

// ScheduledItemHandler serves one route family per kind. The kind comes from
// the path; a body kind is ignored.
type ScheduledItemHandler struct {
	service service.ScheduledItemService
	log     *logger.Logger
}

func NewScheduledItemHandler(service service.ScheduledItemService, log *logger.Logger) *ScheduledItemHandler {
	return &ScheduledItemHandler{
		service: service,
		log:     log,
	}
}

func (h *ScheduledItemHandler) Create(kind model.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var item model.ScheduledItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
			return
		}
		item.ID = ""
		item.Kind = kind

		if err := h.service.Create(r.Context(), &item); err != nil {
			h.writeError(w, "Create", err)
			return
		}

		if err := httputil.WriteCreated(w, item); err != nil {
			h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
		}
	}
}

func (h *ScheduledItemHandler) GetByID(kind model.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		item, err := h.findOfKind(r.Context(), kind, ps.ByName("id"))
		if err != nil {
			h.writeError(w, "GetByID", err)
			return
		}

		if err := httputil.WriteSuccess(w, item); err != nil {
			h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
		}
	}
}

// GetAll lists one kind; an empty kind lists every scheduled item.
func (h *ScheduledItemHandler) GetAll(kind model.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		limit, offset, err := httputil.ExtractLimitOffset(r)
		if err != nil {
			h.writeError(w, "GetAll", err)
			return
		}

		items, totalCount, err := h.service.List(r.Context(), kind, limit, offset)
		if err != nil {
			h.writeError(w, "GetAll", err)
			return
		}

		if err := httputil.WritePaginated(w, items, totalCount, limit, offset); err != nil {
			h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
		}
	}
}

func (h *ScheduledItemHandler) Update(kind model.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		var updates model.ScheduledItemUpdate
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
			return
		}

		if _, err := h.findOfKind(r.Context(), kind, id); err != nil {
			h.writeError(w, "Update", err)
			return
		}

		item, err := h.service.Update(r.Context(), id, &updates)
		if err != nil {
			h.writeError(w, "Update", err)
			return
		}

		if err := httputil.WriteSuccess(w, item); err != nil {
			h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
		}
	}
}

func (h *ScheduledItemHandler) Delete(kind model.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		if _, err := h.findOfKind(r.Context(), kind, id); err != nil {
			h.writeError(w, "Delete", err)
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			h.writeError(w, "Delete", err)
			return
		}

		httputil.WriteNoContent(w)
	}
}

// findOfKind hides items of another kind behind a 404, so
// /api/v1/formations/id/:id never reaches a session.
func (h *ScheduledItemHandler) findOfKind(ctx context.Context, kind model.Kind, id string) (*model.ScheduledItem, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("ID parameter is required")
	}
	item, err := h.service.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Kind != kind {
		return nil, apperrors.NotFoundWithID(kindTitle(kind), id)
	}
	return item, nil
}

func (h *ScheduledItemHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func kindTitle(kind model.Kind) string {
	switch kind {
	case model.KindFormation:
		return "Formation"
	case model.KindSession:
		return "Session"
	default:
		return "Event"
	}
}

func (h *ScheduledItemHandler) RegisterRoutes(router *httprouter.Router) {
	for _, kind := range model.Kinds {
		base := "/api/v1/" + kind.Plural()
		router.POST(base, requireRoles(h.Create(kind), model.ManagerRoles...))
		router.GET(base, requireRoles(h.GetAll(kind), model.Roles...))
		router.GET(base+"/id/:id", requireRoles(h.GetByID(kind), model.Roles...))
		router.PATCH(base+"/id/:id", requireRoles(h.Update(kind), model.ManagerRoles...))
		router.DELETE(base+"/id/:id", requireRoles(h.Delete(kind), model.ManagerRoles...))
	}
	router.GET(allItemsPath, requireRoles(h.GetAll(""), model.Roles...))
}
