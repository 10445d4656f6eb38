package intents

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"mycity/internal/mycity"
)

const AddressSlot = "Address"

const (
	welcomeSpeech = "Welcome to the Boston Public Services skill. " +
		"You can ask me for your closest polling location or snow emergency parking. " +
		"How can I help you?"
	welcomeReprompt = "You can tell me your address, or ask where your closest polling location is."
	helpSpeech      = "You can tell me your address by saying, my address is, followed by your address. " +
		"Then ask, where is my closest polling location."
	goodbyeSpeech  = "Thank you for using the Boston Public Services skill. See you next time!"
	fallbackSpeech = "I'm not sure what you're asking me. Please ask again."
	noAddressHeard = "I didn't catch your address. Please tell me your address again."
)

// Launch greets the caller and keeps the session open.
func Launch(_ context.Context, req *mycity.Request) (*mycity.Response, error) {
	return &mycity.Response{
		OutputSpeech:      welcomeSpeech,
		RepromptText:      welcomeReprompt,
		CardTitle:         "Welcome",
		SessionAttributes: req.SessionAttributes,
	}, nil
}

func Help(_ context.Context, req *mycity.Request) (*mycity.Response, error) {
	return &mycity.Response{
		OutputSpeech:      helpSpeech,
		RepromptText:      welcomeReprompt,
		CardTitle:         req.IntentName,
		SessionAttributes: req.SessionAttributes,
	}, nil
}

func Stop(_ context.Context, req *mycity.Request) (*mycity.Response, error) {
	return &mycity.Response{
		OutputSpeech:      goodbyeSpeech,
		CardTitle:         "Session Ended",
		SessionAttributes: req.SessionAttributes,
		ShouldEndSession:  true,
	}, nil
}

func Fallback(_ context.Context, req *mycity.Request) (*mycity.Response, error) {
	return &mycity.Response{
		OutputSpeech:      fallbackSpeech,
		RepromptText:      fallbackSpeech,
		CardTitle:         req.IntentName,
		SessionAttributes: req.SessionAttributes,
	}, nil
}

// SessionEnded acknowledges the platform's end-of-session notice.
func SessionEnded(_ context.Context, _ *mycity.Request) (*mycity.Response, error) {
	return &mycity.Response{ShouldEndSession: true}, nil
}

// SetAddress stores the spoken address in the session and, when a store is
// configured, for later sessions.
type SetAddress struct {
	store AddressStore
	log   *zap.Logger
}

func NewSetAddress(store AddressStore, log *zap.Logger) *SetAddress {
	if log == nil {
		log = zap.NewNop()
	}
	return &SetAddress{store: store, log: log.Named("set_address")}
}

func (h *SetAddress) Handle(ctx context.Context, req *mycity.Request) (*mycity.Response, error) {
	addr := req.Slot(AddressSlot)
	if addr == "" {
		return &mycity.Response{
			OutputSpeech:      noAddressHeard,
			RepromptText:      noAddressHeard,
			CardTitle:         req.IntentName,
			SessionAttributes: req.SessionAttributes,
		}, nil
	}

	attrs := make(map[string]any, len(req.SessionAttributes)+1)
	maps.Copy(attrs, req.SessionAttributes)
	attrs[mycity.CurrentAddressKey] = addr

	if h.store != nil && req.UserID != "" {
		if err := h.store.SaveAddress(ctx, req.UserID, addr); err != nil {
			return nil, fmt.Errorf("save address: %w", err)
		}
		h.log.Debug("address stored", zap.String("session_id", req.SessionID))
	}

	return &mycity.Response{
		OutputSpeech:      fmt.Sprintf("Thanks, I've set your address to %s. What would you like to know?", addr),
		CardTitle:         req.IntentName,
		CardContent:       addr,
		SessionAttributes: attrs,
	}, nil
}
