package alexa

import (
	"strings"

	"mycity/internal/mycity"
)

func ToMyCityRequest(env RequestEnvelope) *mycity.Request {
	req := &mycity.Request{
		RequestType:       env.Request.Type,
		RequestID:         env.Request.RequestID,
		SessionID:         env.Session.SessionID,
		UserID:            env.Session.User.UserID,
		IsNewSession:      env.Session.New,
		SessionAttributes: env.Session.Attributes,
	}
	if req.SessionAttributes == nil {
		req.SessionAttributes = map[string]any{}
	}
	if in := env.Request.Intent; in != nil {
		req.IntentName = in.Name
		req.Slots = make(map[string]string, len(in.Slots))
		for name, s := range in.Slots {
			if v := strings.TrimSpace(s.Value); v != "" {
				req.Slots[name] = v
			}
		}
	}
	return req
}

// FromMyCityResponse builds the platform response. Empty speech is sent as
// silence and an empty reprompt as no reprompt.
func FromMyCityResponse(resp *mycity.Response) ResponseEnvelope {
	out := ResponseEnvelope{
		Version:           Version,
		SessionAttributes: resp.SessionAttributes,
		Response:          Response{ShouldEndSession: resp.ShouldEndSession},
	}
	if resp.OutputSpeech != "" {
		out.Response.OutputSpeech = &OutputSpeech{Type: "PlainText", Text: resp.OutputSpeech}
	}
	if resp.RepromptText != "" {
		out.Response.Reprompt = &Reprompt{OutputSpeech: OutputSpeech{Type: "PlainText", Text: resp.RepromptText}}
	}
	if resp.CardTitle != "" {
		content := resp.CardContent
		if content == "" {
			content = resp.OutputSpeech
		}
		out.Response.Card = &Card{Type: "Simple", Title: resp.CardTitle, Content: content}
	}
	return out
}
