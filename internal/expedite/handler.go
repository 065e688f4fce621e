package expedite

import (
	"errors"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/appetiteclub/expedite/internal/board"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the board read models and operator actions over HTTP.
type Handler struct {
	boards map[string]*board.Engine
	logger apt.Logger
	config *apt.Config
	tlm    *telemetry.HTTP
}

func NewHandler(boards map[string]*board.Engine, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		boards: boards,
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/boards/{board}", func(r chi.Router) {
		r.Get("/", h.GetBoard)
		r.Get("/health", h.GetBoardHealth)
		r.Route("/orders/{id}", func(r chi.Router) {
			r.Patch("/advance", h.AdvanceOrder)
			r.Patch("/serve", h.ServeOrder)
			r.Patch("/reset", h.ResetOrder)
			r.Patch("/items/{itemID}/toggle", h.ToggleItem)
		})
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func (h *Handler) engine(w http.ResponseWriter, r *http.Request) *board.Engine {
	name := chi.URLParam(r, "board")
	engine, ok := h.boards[name]
	if !ok {
		apt.RespondError(w, http.StatusNotFound, "Unknown board")
		return nil
	}
	return engine
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBoard")
	defer finish()

	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	apt.Respond(w, http.StatusOK, engine.View(), nil)
}

func (h *Handler) GetBoardHealth(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBoardHealth")
	defer finish()

	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	apt.Respond(w, http.StatusOK, engine.Health(), nil)
}

func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AdvanceOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := engine.AdvanceOrder(ctx, id)
	if err != nil {
		h.respondActionError(w, log, "advance", err)
		return
	}

	apt.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ServeOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ServeOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := engine.MarkServed(ctx, id)
	if err != nil {
		h.respondActionError(w, log, "serve", err)
		return
	}

	apt.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ResetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ResetOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := engine.ResetOrder(ctx, id)
	if err != nil {
		h.respondActionError(w, log, "reset", err)
		return
	}

	apt.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	order, err := engine.ToggleItem(ctx, orderID, itemID)
	if err != nil {
		h.respondActionError(w, log, "toggle item", err)
		return
	}

	apt.Respond(w, http.StatusOK, order, nil)
}

// respondActionError maps engine errors to HTTP responses. Gateway
// failures surface once here; the next successful poll corrects the board.
func (h *Handler) respondActionError(w http.ResponseWriter, log apt.Logger, action string, err error) {
	switch {
	case errors.Is(err, board.ErrOrderNotFound):
		apt.RespondError(w, http.StatusNotFound, "Order not on board")
	case errors.Is(err, board.ErrItemNotFound):
		apt.RespondError(w, http.StatusNotFound, "Order item not found")
	case errors.Is(err, board.ErrItemsNotReady):
		apt.RespondError(w, http.StatusConflict, "Not every item is ready")
	case errors.Is(err, board.ErrNoTransition):
		apt.RespondError(w, http.StatusConflict, "No transition from current status")
	default:
		log.Errorf("cannot %s order: %v", action, err)
		apt.RespondError(w, http.StatusBadGateway, "Order service request failed")
	}
}
