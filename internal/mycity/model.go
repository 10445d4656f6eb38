// Package mycity holds the platform-neutral request and response models that
// intent handlers read and write.
package mycity

import (
	"fmt"
	"strings"
)

// Session attribute keys.
const (
	CurrentAddressKey = "currentAddress"
)

// Request types.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

type Request struct {
	RequestType       string
	RequestID         string
	SessionID         string
	UserID            string
	IsNewSession      bool
	IntentName        string
	Slots             map[string]string
	SessionAttributes map[string]any
}

// CurrentAddress returns the caller's address from the session, if any.
func (r *Request) CurrentAddress() (string, bool) {
	if r == nil || r.SessionAttributes == nil {
		return "", false
	}
	v, ok := r.SessionAttributes[CurrentAddressKey]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s, true
}

func (r *Request) Slot(name string) string {
	if r == nil || r.Slots == nil {
		return ""
	}
	return strings.TrimSpace(r.Slots[name])
}

// String omits attribute and slot values, which may hold the caller's
// address.
func (r *Request) String() string {
	_, hasAddress := r.CurrentAddress()
	return fmt.Sprintf("Request{type=%s intent=%s session=%s new=%t attrs=%d address=%t}",
		r.RequestType, r.IntentName, r.SessionID, r.IsNewSession, len(r.SessionAttributes), hasAddress)
}

// Response is what a handler hands back to the platform adapter. Empty
// OutputSpeech means silence; empty RepromptText means no reprompt.
type Response struct {
	OutputSpeech      string
	RepromptText      string
	CardTitle         string
	CardContent       string
	SessionAttributes map[string]any
	ShouldEndSession  bool
}
