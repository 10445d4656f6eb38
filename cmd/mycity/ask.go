package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mycity/internal/alexa"
	"mycity/internal/app"
	"mycity/internal/intents"
	"mycity/internal/mycity"
)

var (
	askIntent  string
	askAddress string
	askUser    string
	askSlots   []string
	askRaw     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer one intent and print the response",
	Long: `Build a voice-platform request for one intent, run it through the same
router the Lambda uses and print the spoken answer.

Example:
  mycity ask --intent PollingPlaceIntent --address "46 Everdean St"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askIntent, "intent", "i", intents.PollingLocationIntent, "Intent name")
	askCmd.Flags().StringVarP(&askAddress, "address", "a", "", "Current address to put in the session")
	askCmd.Flags().StringVar(&askUser, "user", "", "User ID (defaults to a random one)")
	askCmd.Flags().StringArrayVarP(&askSlots, "slot", "s", nil, "Slot value as name=value (repeatable)")
	askCmd.Flags().BoolVar(&askRaw, "json", false, "Print the full response envelope as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, _ []string) error {
	slots, err := parseSlots(askSlots)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	awsCfg, cfg, err := app.LoadConfig(ctx)
	if err != nil {
		return err
	}
	router, err := app.NewRouter(cfg, app.DepsFromAWS(awsCfg, cfg), logger)
	if err != nil {
		return err
	}

	env := newEnvelope(askIntent, askAddress, askUser, slots)
	out, err := router.ServeEnvelope(ctx, env)
	if err != nil {
		return err
	}

	if askRaw {
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	if out.Response.OutputSpeech == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "(no speech)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Response.OutputSpeech.Text)
	return nil
}

// newEnvelope builds an intent request with fresh request and session IDs.
func newEnvelope(intent, address, userID string, slots map[string]string) alexa.RequestEnvelope {
	if userID == "" {
		userID = "cli-" + uuid.NewString()
	}
	attrs := map[string]any{}
	if address != "" {
		attrs[mycity.CurrentAddressKey] = address
	}

	in := &alexa.Intent{Name: intent, Slots: map[string]alexa.Slot{}}
	for name, v := range slots {
		in.Slots[name] = alexa.Slot{Name: name, Value: v}
	}

	return alexa.RequestEnvelope{
		Version: alexa.Version,
		Session: alexa.Session{
			New:        true,
			SessionID:  "cli-session-" + uuid.NewString(),
			Attributes: attrs,
			User:       alexa.User{UserID: userID},
		},
		Request: alexa.Request{
			Type:      mycity.IntentRequest,
			RequestID: "cli-request-" + uuid.NewString(),
			Locale:    "en-US",
			Intent:    in,
		},
	}
}

func parseSlots(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid slot %q, want name=value", p)
		}
		out[name] = value
	}
	return out, nil
}
