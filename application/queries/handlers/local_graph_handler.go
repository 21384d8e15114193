package handlers

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
)

const tracerName = "github.com/Alexislovesarchitecture/contact-bubbles/application/queries"

// GetLocalGraphHandler runs the local graph expander for a query
type GetLocalGraphHandler struct {
	expander *services.LocalGraphExpander
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewGetLocalGraphHandler creates a new local graph handler
func NewGetLocalGraphHandler(expander *services.LocalGraphExpander, logger *zap.Logger) *GetLocalGraphHandler {
	return &GetLocalGraphHandler{
		expander: expander,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Handle executes the local graph query
func (h *GetLocalGraphHandler) Handle(ctx context.Context, query queries.GetLocalGraphQuery) (*services.LocalGraph, error) {
	depth := services.ClampDepth(query.Depth)
	allowed := services.NewTypeSet(query.Types...)

	ctx, span := h.tracer.Start(ctx, "LocalGraph.Expand",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("contact.id", query.ContactID),
			attribute.Int("graph.depth", depth),
			attribute.StringSlice("graph.types", allowed.Values()),
		),
	)
	defer span.End()

	graph, err := h.expander.Expand(ctx, query.ContactID, depth, allowed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("graph.nodes", len(graph.Nodes)),
		attribute.Int("graph.edges", len(graph.Edges)),
	)
	h.logger.Debug("Local graph expanded",
		zap.String("contactID", query.ContactID),
		zap.Int("depth", depth),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)),
	)
	return graph, nil
}
