package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/quatro-backend/internal/apperror"
	"github.com/rocketscienceinc/quatro-backend/internal/entity"
)

const localGameID = "local"

const helpText = `Commands:
  select <color> <shape>   pick the piece to place (white|black, circle|square)
  place <row> <col>        put the selected piece on the board (0-3)
  restart                  clear the board, the first player moves again
  help                     show this help
  quit                     leave the game
`

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("wrong arguments")
)

var errQuit = errors.New("quit")

// Session runs a hot-seat game on a pair of text streams.
type Session struct {
	logger *slog.Logger
	game   *entity.Game
	in     *bufio.Scanner
	out    io.Writer
}

func NewSession(logger *slog.Logger, player1, player2 string, in io.Reader, out io.Writer) (*Session, error) {
	game, err := entity.NewGame(localGameID, player1, player2)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &Session{
		logger: logger.With("component", "console"),
		game:   game,
		in:     bufio.NewScanner(in),
		out:    out,
	}, nil
}

func (that *Session) Game() *entity.Game {
	return that.game
}

// Run - reads commands until quit, end of input or ctx is cancelled.
func (that *Session) Run(ctx context.Context) error {
	if err := Render(that.out, that.game); err != nil {
		return err
	}

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := that.readLines(readCtx)

	for {
		if _, err := fmt.Fprint(that.out, "> "); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		var line inputLine
		var ok bool

		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}

		if !ok {
			return nil
		}

		if line.err != nil {
			return fmt.Errorf("failed to read command: %w", line.err)
		}

		err := that.execute(line.text)
		if errors.Is(err, errQuit) {
			return nil
		}

		if err != nil && !IsRejected(err) {
			return err
		}

		if err != nil {
			if _, werr := fmt.Fprintf(that.out, "error: %v\n", err); werr != nil {
				return fmt.Errorf("failed to write error: %w", werr)
			}
		}
	}
}

type inputLine struct {
	text string
	err  error
}

// readLines - scans input on its own goroutine so Run can stop while a read is pending.
// The channel is closed at end of input.
func (that *Session) readLines(ctx context.Context) <-chan inputLine {
	lines := make(chan inputLine)

	go func() {
		defer close(lines)

		for that.in.Scan() {
			select {
			case lines <- inputLine{text: that.in.Text()}:
			case <-ctx.Done():
				return
			}
		}

		if err := that.in.Err(); err != nil {
			select {
			case lines <- inputLine{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return lines
}

func (that *Session) execute(line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "help":
		_, err := io.WriteString(that.out, helpText)
		return err
	case "quit", "exit":
		return errQuit
	}

	event, err := ParseCommand(fields)
	if err != nil {
		return err
	}

	if err = that.game.Apply(event); err != nil {
		that.logger.Debug("move rejected", "event", event.Type, "error", err)
		return err
	}

	if event.Type == entity.EventPlace && that.game.IsFinished() {
		that.logger.Info("game finished", "status", that.game.Status, "winner", that.game.Winner)
	}

	return Render(that.out, that.game)
}

// ParseCommand turns select, place and restart commands into engine events.
func ParseCommand(fields []string) (entity.Event, error) {
	if len(fields) == 0 {
		return entity.Event{}, ErrUnknownCommand
	}

	switch fields[0] {
	case "select":
		if len(fields) != 3 {
			return entity.Event{}, fmt.Errorf("%w: select <color> <shape>", ErrUsage)
		}

		piece := entity.Piece{Color: entity.Color(fields[1]), Shape: entity.Shape(fields[2])}
		if err := piece.Validate(); err != nil {
			return entity.Event{}, err
		}

		return entity.SelectEvent(piece), nil
	case "place":
		if len(fields) != 3 {
			return entity.Event{}, fmt.Errorf("%w: place <row> <col>", ErrUsage)
		}

		row, rowErr := strconv.Atoi(fields[1])
		col, colErr := strconv.Atoi(fields[2])
		if rowErr != nil || colErr != nil {
			return entity.Event{}, fmt.Errorf("%w: row and col must be numbers", ErrUsage)
		}

		return entity.PlaceEvent(row, col), nil
	case "restart":
		return entity.RestartEvent(), nil
	default:
		return entity.Event{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// IsRejected reports whether err came from a command the game refused rather than from I/O.
func IsRejected(err error) bool {
	return errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrUsage) || apperror.IsIllegalOperation(err)
}
