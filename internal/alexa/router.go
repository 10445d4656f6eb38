package alexa

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mycity/internal/intents"
	"mycity/internal/mycity"
)

// Router dispatches requests by type and, for intent requests, by intent
// name. Unknown intents go to the fallback handler.
type Router struct {
	intents      map[string]intents.Handler
	launch       intents.Handler
	sessionEnded intents.Handler
	fallback     intents.Handler
	log          *zap.Logger
}

// NewRouter returns a router with the built-in launch, help, stop and
// fallback handlers registered.
func NewRouter(log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		intents:      map[string]intents.Handler{},
		launch:       intents.HandlerFunc(intents.Launch),
		sessionEnded: intents.HandlerFunc(intents.SessionEnded),
		fallback:     intents.HandlerFunc(intents.Fallback),
		log:          log,
	}
	r.Handle(intents.HelpIntent, intents.HandlerFunc(intents.Help))
	r.Handle(intents.StopIntent, intents.HandlerFunc(intents.Stop))
	r.Handle(intents.CancelIntent, intents.HandlerFunc(intents.Stop))
	r.Handle(intents.FallbackIntent, r.fallback)
	return r
}

func (r *Router) Handle(intent string, h intents.Handler) {
	r.intents[intent] = h
}

func (r *Router) Dispatch(ctx context.Context, req *mycity.Request) (*mycity.Response, error) {
	switch req.RequestType {
	case mycity.LaunchRequest:
		return r.launch.Handle(ctx, req)
	case mycity.SessionEndedRequest:
		return r.sessionEnded.Handle(ctx, req)
	case mycity.IntentRequest:
		h, ok := r.intents[req.IntentName]
		if !ok {
			r.log.Warn("unknown intent", zap.String("intent", req.IntentName))
			h = r.fallback
		}
		return h.Handle(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported request type %q", req.RequestType)
	}
}

// ServeEnvelope converts, dispatches and converts back.
func (r *Router) ServeEnvelope(ctx context.Context, env RequestEnvelope) (ResponseEnvelope, error) {
	req := ToMyCityRequest(env)
	r.log.Debug("dispatching",
		zap.String("request_id", req.RequestID),
		zap.String("type", req.RequestType),
		zap.String("intent", req.IntentName))

	resp, err := r.Dispatch(ctx, req)
	if err != nil {
		return ResponseEnvelope{}, err
	}
	return FromMyCityResponse(resp), nil
}
