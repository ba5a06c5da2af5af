package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/inarow-backend/internal/entity"
)

const (
	commandQuit = "q"
	commandNew  = "n"
)

var errQuit = errors.New("quit")

type gameManager interface {
	Start(ctx context.Context, size int) (*entity.Session, []entity.Event, error)
	HandleCellSelected(ctx context.Context, id string, cell int) (*entity.Session, []entity.Event, error)
	Terminate(ctx context.Context, id string) ([]entity.Event, error)
}

// Client plays games on a terminal: it reads commands from in and draws through the renderer.
type Client struct {
	logger   *slog.Logger
	games    gameManager
	renderer *Renderer
	in       *bufio.Scanner

	session *entity.Session
}

func NewClient(logger *slog.Logger, games gameManager, renderer *Renderer, in io.Reader) *Client {
	return &Client{
		logger:   logger.With("component", "terminal"),
		games:    games,
		renderer: renderer,
		in:       bufio.NewScanner(in),
	}
}

// Run - plays until the input ends, q is entered or ctx is canceled.
func (that *Client) Run(ctx context.Context) error {
	defer that.leave(context.WithoutCancel(ctx))

	if err := that.newGame(ctx); err != nil {
		return ignoreQuit(err)
	}

	for {
		line, err := that.readLine(ctx)
		if err != nil {
			return ignoreQuit(err)
		}

		switch line {
		case "":
			continue
		case commandQuit:
			return nil
		case commandNew:
			that.leave(ctx)
			if err = that.newGame(ctx); err != nil {
				return ignoreQuit(err)
			}
			continue
		}

		cell, err := parseCell(line, that.session.Size)
		if err != nil {
			that.renderer.Error(err.Error())
			continue
		}

		if err = that.play(ctx, cell); err != nil {
			return err
		}
	}
}

func (that *Client) play(ctx context.Context, cell int) error {
	session, events, err := that.games.HandleCellSelected(ctx, that.session.ID, cell)
	if err != nil {
		if session == nil {
			return fmt.Errorf("failed to select cell: %w", err)
		}

		that.renderer.Error(err.Error())
		return nil
	}

	that.session = session
	that.renderer.Render(ctx, session.ID, events)

	if session.IsFinished() {
		that.renderer.Message("Enter n for a new game or q to quit")
	}

	return nil
}

func (that *Client) newGame(ctx context.Context) error {
	for {
		that.renderer.Message(fmt.Sprintf("Board size (%d-%d):", entity.MinBoardSize, entity.MaxBoardSize))

		line, err := that.readLine(ctx)
		if err != nil {
			return err
		}

		if line == commandQuit {
			return errQuit
		}

		size, err := strconv.Atoi(line)
		if err != nil {
			that.renderer.Error("size must be a number")
			continue
		}

		session, events, err := that.games.Start(ctx, size)
		if err != nil {
			that.renderer.Error(err.Error())
			continue
		}

		that.logger.Debug("game started", "sessionID", session.ID, "size", size)

		that.session = session
		that.renderer.Follow(session.ID, size)
		that.renderer.Render(ctx, session.ID, events)
		that.renderer.Message("Enter a cell index or \"x y\"")

		return nil
	}
}

func (that *Client) leave(ctx context.Context) {
	if that.session == nil {
		return
	}

	id := that.session.ID
	that.session = nil

	events, err := that.games.Terminate(ctx, id)
	if err != nil {
		that.logger.Error("failed to terminate game", "sessionID", id, "error", err)
		return
	}

	that.renderer.Render(ctx, id, events)
}

func (that *Client) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !that.in.Scan() {
		if err := that.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		return "", errQuit
	}

	return strings.TrimSpace(that.in.Text()), nil
}

// parseCell accepts a cell index or a "x y" pair of column and row.
func parseCell(line string, size int) (int, error) {
	fields := strings.Fields(line)

	switch len(fields) {
	case 1:
		cell, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("bad cell %q", line)
		}
		return cell, nil
	case 2:
		x, errX := strconv.Atoi(fields[0])
		y, errY := strconv.Atoi(fields[1])
		if errX != nil || errY != nil {
			return 0, fmt.Errorf("bad cell %q", line)
		}
		if x < 0 || x >= size || y < 0 || y >= size {
			return 0, fmt.Errorf("cell %q is off the board", line)
		}
		return y*size + x, nil
	default:
		return 0, fmt.Errorf("bad cell %q", line)
	}
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}

	return err
}
