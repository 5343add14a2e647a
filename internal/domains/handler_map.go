package domains

import (
	"context"
	"encoding/json"

	"tdp/internal/domains/handlers/ustvasend"
	"tdp/internal/entity/etrequest"
	"tdp/internal/queue"
)

// HandlerFactory builds a handler for one job.
type HandlerFactory func(ctx context.Context, meta *queue.Meta, payload json.RawMessage, deps *Deps) (Handler, error)

// Handler processes one parsed job.
type Handler interface {
	Process(ctx context.Context) error
}

// HandlerMap routes action types to handler factories.
var HandlerMap = map[string]HandlerFactory{
	etrequest.TypeSendUstva: newUstvaSendHandler,
}

func newUstvaSendHandler(ctx context.Context, meta *queue.Meta, payload json.RawMessage, deps *Deps) (Handler, error) {
	return ustvasend.NewHandler(meta.RequestID, payload, deps.UstvaController)
}
