package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

const (
	actionGameState   = "game:state"
	actionGameMove    = "game:move"
	actionGameJump    = "game:jump"
	actionGameRestart = "game:restart"
)

func (that *Server) handleGameState(ctx context.Context, sessionID string, msg *Message, bufrw *bufio.ReadWriter) error {
	game, err := that.uGame.GetOrCreateGame(ctx, sessionID)
	if err != nil {
		return that.sendUseCaseError(bufrw, msg.Action, err)
	}

	return sendGame(bufrw, msg.Action, game, nil)
}

func (that *Server) handleGameMove(ctx context.Context, sessionID string, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := decodePayload(msg)
	if err != nil || payload.Cell == nil || !entity.IsValidCell(*payload.Cell) {
		return sendErrorResponse(bufrw, msg.Action, apperror.ErrInvalidCell.Error())
	}

	game, applied, err := that.uGame.MakeMove(ctx, sessionID, *payload.Cell)
	if err != nil {
		return that.sendUseCaseError(bufrw, msg.Action, err)
	}

	return sendGame(bufrw, msg.Action, game, &applied)
}

func (that *Server) handleGameJump(ctx context.Context, sessionID string, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := decodePayload(msg)
	if err != nil || payload.Step == nil {
		return sendErrorResponse(bufrw, msg.Action, apperror.ErrStepOutOfRange.Error())
	}

	game, err := that.uGame.JumpTo(ctx, sessionID, *payload.Step)
	if err != nil {
		return that.sendUseCaseError(bufrw, msg.Action, err)
	}

	return sendGame(bufrw, msg.Action, game, nil)
}

func (that *Server) handleGameRestart(ctx context.Context, sessionID string, msg *Message, bufrw *bufio.ReadWriter) error {
	game, err := that.uGame.Restart(ctx, sessionID)
	if err != nil {
		return that.sendUseCaseError(bufrw, msg.Action, err)
	}

	return sendGame(bufrw, msg.Action, game, nil)
}

func decodePayload(msg *Message) (*RequestPayload, error) {
	var payload RequestPayload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

// sendUseCaseError reports client mistakes back to the client, everything else is logged.
func (that *Server) sendUseCaseError(bufrw *bufio.ReadWriter, action string, err error) error {
	if errors.Is(err, apperror.ErrStepOutOfRange) {
		return sendErrorResponse(bufrw, action, apperror.ErrStepOutOfRange.Error())
	}

	that.logger.Error("failed to process action", "action", action, "error", err)

	return sendErrorResponse(bufrw, action, "internal error")
}

func sendGame(bufrw *bufio.ReadWriter, action string, game *tictactoe.Controller, applied *bool) error {
	return sendMessage(bufrw, action, ResponsePayload{Game: view.New(game), Applied: applied})
}

func sendErrorResponse(bufrw *bufio.ReadWriter, action, errorMsg string) error {
	if err := sendMessage(bufrw, action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
