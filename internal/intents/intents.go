// Package intents implements the skill's intent handlers over the mycity
// request/response model.
package intents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mycity/internal/location"
	"mycity/internal/mycity"
)

// Intent names.
const (
	PollingLocationIntent = "PollingPlaceIntent"
	SnowParkingIntent     = "SnowParkingIntent"
	SetAddressIntent      = "SetAddressIntent"
	HelpIntent            = "AMAZON.HelpIntent"
	StopIntent            = "AMAZON.StopIntent"
	CancelIntent          = "AMAZON.CancelIntent"
	FallbackIntent        = "AMAZON.FallbackIntent"
)

type Handler interface {
	Handle(ctx context.Context, req *mycity.Request) (*mycity.Response, error)
}

type HandlerFunc func(ctx context.Context, req *mycity.Request) (*mycity.Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *mycity.Request) (*mycity.Response, error) {
	return f(ctx, req)
}

// Finder renders speech for the feature closest to origin, or "" when none
// was found.
type Finder interface {
	Find(ctx context.Context, origin string) (string, error)
}

// AddressStore persists a caller's address between sessions. LoadAddress
// returns "" when nothing is stored.
type AddressStore interface {
	LoadAddress(ctx context.Context, userID string) (string, error)
	SaveAddress(ctx context.Context, userID, address string) error
}

// Locale is the city/state suffix used to complete addresses.
type Locale struct {
	City  string
	State string
}

// closestFeature is the shared shape of every "where is the closest X"
// intent.
type closestFeature struct {
	finder Finder
	store  AddressStore
	locale Locale
	log    *zap.Logger
}

func (h *closestFeature) handle(ctx context.Context, req *mycity.Request) (*mycity.Response, error) {
	h.log.Info("request received", zap.Stringer("request", req))

	resp := &mycity.Response{}
	origin, err := h.origin(ctx, req)
	switch {
	case err == nil:
		h.log.Debug("finding closest feature", zap.String("intent", req.IntentName), zap.String("origin", origin))
		speech, err := h.finder.Find(ctx, origin)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req.IntentName, err)
		}
		resp.OutputSpeech = speech
	case errors.Is(err, location.ErrNoAddress):
		h.log.Error("intent called with no address", zap.String("intent", req.IntentName))
	default:
		return nil, fmt.Errorf("%s: %w", req.IntentName, err)
	}

	// No reprompt: if the caller says nothing further the session ends.
	resp.RepromptText = ""
	resp.SessionAttributes = req.SessionAttributes
	resp.CardTitle = req.IntentName
	return resp, nil
}

// origin prefers the session address and falls back to the store.
func (h *closestFeature) origin(ctx context.Context, req *mycity.Request) (string, error) {
	if _, ok := req.CurrentAddress(); ok || h.store == nil || req.UserID == "" {
		return location.BuildOriginAddress(req, h.locale.City, h.locale.State)
	}

	addr, err := h.store.LoadAddress(ctx, req.UserID)
	if err != nil {
		return "", fmt.Errorf("load stored address: %w", err)
	}
	if strings.TrimSpace(addr) == "" {
		return "", location.ErrNoAddress
	}
	stored := &mycity.Request{SessionAttributes: map[string]any{mycity.CurrentAddressKey: addr}}
	return location.BuildOriginAddress(stored, h.locale.City, h.locale.State)
}

// Clause formats a non-blank value with format, and a blank one as "".
func Clause(format, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return fmt.Sprintf(format, value)
}
