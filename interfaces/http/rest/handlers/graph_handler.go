package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// GraphObserver records the size of returned graphs
type GraphObserver interface {
	ObserveGraph(nodes int)
}

// GraphHandler handles local graph requests
type GraphHandler struct {
	queryBus     *querybus.QueryBus
	observer     GraphObserver
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewGraphHandler creates a new graph handler. observer may be nil.
func NewGraphHandler(
	queryBus *querybus.QueryBus,
	observer GraphObserver,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		queryBus:     queryBus,
		observer:     observer,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetLocalGraph handles GET /graph/local?contactId=&depth=&types=
func (h *GraphHandler) GetLocalGraph(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := queries.GetLocalGraphQuery{
		ContactID: strings.TrimSpace(params.Get("contactId")),
		Depth:     parseDepth(params.Get("depth")),
		Types:     services.ParseTypeSet(params.Get("types")).Values(),
	}

	graph, err := ask[*services.LocalGraph](r.Context(), h.queryBus, query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if h.observer != nil {
		h.observer.ObserveGraph(len(graph.Nodes))
	}
	respondJSON(w, http.StatusOK, graph)
}

// parseDepth returns the requested depth, or the minimum when the parameter
// is missing or not an integer. Clamping happens in the query handler.
func parseDepth(raw string) int {
	depth, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return services.MinDepth
	}
	return depth
}
