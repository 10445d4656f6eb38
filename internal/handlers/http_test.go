package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycity/internal/alexa"
)

type echoSkill struct {
	err error
}

func (e echoSkill) ServeEnvelope(_ context.Context, env alexa.RequestEnvelope) (alexa.ResponseEnvelope, error) {
	if e.err != nil {
		return alexa.ResponseEnvelope{}, e.err
	}
	return alexa.ResponseEnvelope{
		Version:  alexa.Version,
		Response: alexa.Response{OutputSpeech: &alexa.OutputSpeech{Type: "PlainText", Text: env.Request.RequestID}},
	}, nil
}

func request(method, path, body string) events.APIGatewayV2HTTPRequest {
	req := events.APIGatewayV2HTTPRequest{RawPath: path, Body: body}
	req.RequestContext.HTTP.Method = method
	return req
}

func TestHandle_Health(t *testing.T) {
	resp, err := NewHTTPHandler(echoSkill{}, nil).Handle(context.Background(), request(http.MethodGet, "/health", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"service":"mycity-voice"}`, resp.Body)
}

func TestHandle_Alexa(t *testing.T) {
	body := `{"version":"1.0","request":{"type":"LaunchRequest","requestId":"req-1"}}`
	h := NewHTTPHandler(echoSkill{}, nil)

	for _, b64 := range []bool{false, true} {
		req := request(http.MethodPost, "/alexa/", body)
		if b64 {
			req.Body = base64.StdEncoding.EncodeToString([]byte(body))
			req.IsBase64Encoded = true
		}
		resp, err := h.Handle(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out alexa.ResponseEnvelope
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
		assert.Equal(t, "req-1", out.Response.OutputSpeech.Text)
	}
}

func TestHandle_Errors(t *testing.T) {
	h := NewHTTPHandler(echoSkill{}, nil)

	resp, _ := h.Handle(context.Background(), request(http.MethodPost, "/alexa", "{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, "invalid_json")

	resp, _ = h.Handle(context.Background(), request(http.MethodGet, "/alexa", ""))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	failing := NewHTTPHandler(echoSkill{err: errors.New("dataset down")}, nil)
	resp, _ = failing.Handle(context.Background(), request(http.MethodPost, "/alexa", `{"request":{"type":"IntentRequest"}}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body, "dataset down")
}
