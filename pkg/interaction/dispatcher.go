// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package interaction

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jeremyhahn/go-interactions/pkg/adapters/logger"
	"github.com/jeremyhahn/go-interactions/pkg/challenge"
	"github.com/jeremyhahn/go-interactions/pkg/metrics"
)

// CommandHandler handles one named slash command.
type CommandHandler func(ctx context.Context, in *Interaction) (*Response, error)

// Dispatcher decodes verified webhook bodies into interactions and
// routes them by type and command name. It is the only component that
// drives challenge store mutations.
type Dispatcher struct {
	store            challenge.Store
	logger           logger.Logger
	commands         map[string]CommandHandler
	rejectSelfAccept bool
}

// DispatcherConfig holds dispatcher dependencies and policy.
type DispatcherConfig struct {
	// Store is the challenge store. Required.
	Store challenge.Store

	// Logger is the logging adapter (optional, defaults to slog).
	Logger logger.Logger

	// RejectSelfAccept makes a challenger's click on their own accept
	// button an error reply instead of a normal acceptance. Off by
	// default, matching upstream behavior.
	RejectSelfAccept bool
}

// NewDispatcher creates a dispatcher with the built-in commands
// registered.
func NewDispatcher(cfg *DispatcherConfig) (*Dispatcher, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, errors.New("challenge store is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewSlogAdapter(&logger.SlogConfig{Level: logger.LevelInfo})
	}

	d := &Dispatcher{
		store:            cfg.Store,
		logger:           log,
		commands:         make(map[string]CommandHandler),
		rejectSelfAccept: cfg.RejectSelfAccept,
	}

	d.RegisterCommand(CommandTest, d.handleTest)
	d.RegisterCommand(CommandChallenge, d.handleChallenge)

	return d, nil
}

// RegisterCommand binds a handler to a command name, replacing any
// existing binding. Not safe to call concurrently with Dispatch.
func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.commands[name] = handler
}

// Dispatch decodes a verified body and routes it to the appropriate
// handler. Store outcomes (absent or already-accepted challenges) are
// converted to user-visible replies, never surfaced as faults.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (*Response, error) {
	var in Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		metrics.RecordInteraction(metrics.InteractionUnknown, "", metrics.StatusError)
		return nil, ErrDecode
	}

	switch in.Type {
	case TypePing:
		metrics.RecordInteraction(metrics.InteractionPing, "", metrics.StatusSuccess)
		return NewPong(), nil

	case TypeApplicationCommand:
		return d.dispatchCommand(ctx, &in)

	case TypeMessageComponent:
		return d.dispatchComponent(ctx, &in)

	default:
		metrics.RecordInteraction(metrics.InteractionUnknown, "", metrics.StatusError)
		return nil, ErrDecode
	}
}

// dispatchCommand routes a slash command by name. Unrecognized commands
// get an explicit visible reply instead of a silent empty response.
func (d *Dispatcher) dispatchCommand(ctx context.Context, in *Interaction) (*Response, error) {
	if in.Data == nil || in.Data.Name == "" {
		metrics.RecordInteraction(metrics.InteractionCommand, "", metrics.StatusError)
		return nil, ErrDecode
	}

	handler, ok := d.commands[in.Data.Name]
	if !ok {
		d.logger.Warn("Unrecognized command",
			logger.String("command", in.Data.Name),
			logger.String("interaction_id", in.ID))
		metrics.RecordInteraction(metrics.InteractionCommand, in.Data.Name, metrics.StatusUnknownCommand)
		return NewEphemeralMessage("Unknown command: " + in.Data.Name), nil
	}

	resp, err := handler(ctx, in)
	if err != nil {
		metrics.RecordInteraction(metrics.InteractionCommand, in.Data.Name, metrics.StatusError)
		return nil, err
	}

	metrics.RecordInteraction(metrics.InteractionCommand, in.Data.Name, metrics.StatusSuccess)
	return resp, nil
}

// dispatchComponent recovers the challenge id from the component
// identifier and drives the acceptance transition.
func (d *Dispatcher) dispatchComponent(ctx context.Context, in *Interaction) (*Response, error) {
	if in.Data == nil || in.Data.CustomID == "" {
		metrics.RecordInteraction(metrics.InteractionComponent, "", metrics.StatusError)
		return nil, ErrDecode
	}

	challengeID, err := ParseAcceptCustomID(in.Data.CustomID)
	if err != nil {
		metrics.RecordInteraction(metrics.InteractionComponent, "", metrics.StatusError)
		return nil, err
	}

	accepterID := in.UserID()

	if d.rejectSelfAccept {
		existing, err := d.store.Get(ctx, challengeID)
		if err == nil && existing.ChallengerID == accepterID {
			metrics.RecordChallengeOperation(metrics.ChallengeOpAccept, metrics.StatusSelfAccept)
			return NewEphemeralMessage("You cannot accept your own challenge."), nil
		}
	}

	accepted, err := d.store.Transition(ctx, challengeID, challenge.StateIssued, challenge.StateAccepted)
	switch {
	case errors.Is(err, challenge.ErrNotFound):
		metrics.RecordChallengeOperation(metrics.ChallengeOpAccept, metrics.StatusNotFound)
		return NewEphemeralMessage("This challenge is no longer available."), nil
	case errors.Is(err, challenge.ErrInvalidTransition):
		metrics.RecordChallengeOperation(metrics.ChallengeOpAccept, metrics.StatusInvalidTransition)
		return NewEphemeralMessage("This challenge is no longer available."), nil
	case err != nil:
		metrics.RecordChallengeOperation(metrics.ChallengeOpAccept, metrics.StatusError)
		return nil, err
	}

	d.logger.Info("Challenge accepted",
		logger.String("challenge_id", accepted.ID),
		logger.String("challenger_id", accepted.ChallengerID),
		logger.String("accepter_id", accepterID))
	metrics.RecordChallengeOperation(metrics.ChallengeOpAccept, metrics.StatusSuccess)
	metrics.RecordInteraction(metrics.InteractionComponent, "", metrics.StatusSuccess)

	return NewAcceptedMessage(accepterID, accepted.ChallengerID), nil
}

// handleTest implements the test command.
func (d *Dispatcher) handleTest(ctx context.Context, in *Interaction) (*Response, error) {
	return NewMessage("hello world " + RandomEmoji()), nil
}

// handleChallenge implements the challenge command: create a session
// keyed by this interaction's id and reply with the accept button.
func (d *Dispatcher) handleChallenge(ctx context.Context, in *Interaction) (*Response, error) {
	if in.ID == "" || len(in.Data.Options) == 0 {
		return nil, ErrDecode
	}

	challengerID := in.UserID()
	if challengerID == "" {
		return nil, ErrDecode
	}
	object := in.Data.Options[0].StringValue()

	// Redelivered webhooks overwrite rather than error, but leave a trace.
	if _, err := d.store.Get(ctx, in.ID); err == nil {
		d.logger.Warn("Overwriting existing challenge",
			logger.String("challenge_id", in.ID))
		metrics.RecordChallengeOperation(metrics.ChallengeOpIssue, metrics.StatusOverwrite)
	}

	created, err := d.store.Create(ctx, in.ID, challengerID, object)
	if err != nil {
		metrics.RecordChallengeOperation(metrics.ChallengeOpIssue, metrics.StatusError)
		return nil, err
	}

	d.logger.Info("Challenge issued",
		logger.String("challenge_id", created.ID),
		logger.String("challenger_id", created.ChallengerID),
		logger.String("object", created.Object))
	metrics.RecordChallengeOperation(metrics.ChallengeOpIssue, metrics.StatusSuccess)

	return NewChallengeMessage(challengerID, created.ID), nil
}

// Built-in command names.
const (
	// CommandTest replies with a greeting and a random emoji.
	CommandTest = "test"

	// CommandChallenge issues a rock-paper-scissors challenge.
	CommandChallenge = "challenge"
)
