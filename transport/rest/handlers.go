package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

type GameHandler interface {
	Index(ctx echo.Context) error
	Move(ctx echo.Context) error
	Jump(ctx echo.Context) error
	Restart(ctx echo.Context) error
}

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (*tictactoe.Controller, error)
	MakeMove(ctx context.Context, sessionID string, cell int) (*tictactoe.Controller, bool, error)
	JumpTo(ctx context.Context, sessionID string, step int) (*tictactoe.Controller, error)
	Restart(ctx context.Context, sessionID string) (*tictactoe.Controller, error)
}

type gameHandler struct {
	logger *slog.Logger
	uGame  gameUseCase
}

func NewGameHandler(logger *slog.Logger, uGame gameUseCase) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "gameHandler"),
		uGame:  uGame,
	}
}

// Index - renders the board of the current session.
func (that *gameHandler) Index(ctx echo.Context) error {
	game, err := that.uGame.GetOrCreateGame(ctx.Request().Context(), sessionFrom(ctx))
	if err != nil {
		return that.toHTTPError("Index", err)
	}

	return ctx.Render(http.StatusOK, gamePage, view.New(game))
}

// Move - handles a click on a board cell. Illegal moves are ignored.
func (that *gameHandler) Move(ctx echo.Context) error {
	cell, err := strconv.Atoi(ctx.Param("cell"))
	if err != nil || !entity.IsValidCell(cell) {
		return that.toHTTPError("Move", fmt.Errorf("%w: %q", apperror.ErrInvalidCell, ctx.Param("cell")))
	}

	if _, _, err = that.uGame.MakeMove(ctx.Request().Context(), sessionFrom(ctx), cell); err != nil {
		return that.toHTTPError("Move", err)
	}

	return ctx.Redirect(http.StatusSeeOther, "/")
}

// Jump - handles a click on a history entry.
func (that *gameHandler) Jump(ctx echo.Context) error {
	step, err := strconv.Atoi(ctx.Param("step"))
	if err != nil {
		return that.toHTTPError("Jump", fmt.Errorf("%w: %q", apperror.ErrStepOutOfRange, ctx.Param("step")))
	}

	if _, err = that.uGame.JumpTo(ctx.Request().Context(), sessionFrom(ctx), step); err != nil {
		return that.toHTTPError("Jump", err)
	}

	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (that *gameHandler) Restart(ctx echo.Context) error {
	if _, err := that.uGame.Restart(ctx.Request().Context(), sessionFrom(ctx)); err != nil {
		return that.toHTTPError("Restart", err)
	}

	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (that *gameHandler) toHTTPError(method string, err error) error {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell), errors.Is(err, apperror.ErrStepOutOfRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}
