// Package handlers serves the skill behind an API Gateway HTTP API or a
// Lambda function URL.
package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"mycity/internal/alexa"
)

const ServiceName = "mycity-voice"

type EnvelopeServer interface {
	ServeEnvelope(ctx context.Context, env alexa.RequestEnvelope) (alexa.ResponseEnvelope, error)
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

type HTTPHandler struct {
	skill EnvelopeServer
	log   *zap.Logger
}

func NewHTTPHandler(skill EnvelopeServer, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{skill: skill, log: log}
}

// Handle routes GET /health and POST /alexa.
func (h *HTTPHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := req.RequestContext.HTTP.Method
	path := strings.TrimSuffix(req.RawPath, "/")

	switch {
	case path == "/health" && method == http.MethodGet:
		return jsonOK(HealthResponse{OK: true, Service: ServiceName}), nil
	case path == "/alexa" && method == http.MethodPost:
		return h.alexa(ctx, req), nil
	default:
		return jsonErr(http.StatusNotFound, "not_found", nil), nil
	}
}

func (h *HTTPHandler) alexa(ctx context.Context, req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return jsonErr(http.StatusBadRequest, "invalid_body", err)
		}
		body = b
	}

	var env alexa.RequestEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return jsonErr(http.StatusBadRequest, "invalid_json", err)
	}

	out, err := h.skill.ServeEnvelope(ctx, env)
	if err != nil {
		h.log.Error("skill request failed",
			zap.String("request_id", env.Request.RequestID),
			zap.Error(err))
		return jsonErr(http.StatusInternalServerError, "skill_failed", err)
	}
	return jsonOK(out)
}

func jsonOK(v any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(b),
	}
}

func jsonErr(status int, msg string, err error) events.APIGatewayV2HTTPResponse {
	resp := map[string]any{"error": msg}
	if err != nil {
		resp["detail"] = err.Error()
	}
	b, _ := json.Marshal(resp)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(b),
	}
}
