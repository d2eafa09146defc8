package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chadmayfield/wxreport/internal/prompt"
)

const escapeKey = 27

const menuText = `
===================== MENU OPTIONS =====================
  1. Average wind speed and deviation for a month and year
  2. Monthly average ambient temperature for a year
  3. Monthly total solar radiation for a year
  4. All measurements for a year (written to CSV)
  5. Exit
========================================================
`

// ErrExit is returned by a menu choice that ends the session.
var ErrExit = errors.New("exit requested")

// Menu is the interactive loop that dispatches a single character choice to a
// report.
type Menu struct {
	prompter    *prompt.Prompter
	renderer    *Renderer
	out         io.Writer
	clearScreen bool
	logger      *slog.Logger
}

// NewMenu creates a menu reading choices through p.
func NewMenu(p *prompt.Prompter, r *Renderer, out io.Writer, clearScreen bool, logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{
		prompter:    p,
		renderer:    r,
		out:         out,
		clearScreen: clearScreen,
		logger:      logger,
	}
}

// Run shows the menu until the user exits, input ends, or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(m.out, menuText)
		fmt.Fprint(m.out, prompt.SelectionInput)

		line, err := m.prompter.Line()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading menu choice: %w", err)
		}

		err = m.Dispatch(choice(line))
		if errors.Is(err, ErrExit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(m.out, "[ INFO ] Press Enter to continue...")
		if _, err := m.prompter.Line(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("waiting for enter: %w", err)
		}
		if m.clearScreen {
			fmt.Fprint(m.out, "\033[H\033[2J")
		}
	}
}

// Dispatch runs the report for one menu choice. It returns ErrExit for the exit
// choices and io.EOF when input ends while prompting.
func (m *Menu) Dispatch(c byte) error {
	switch c {
	case '1':
		fmt.Fprintln(m.out, "[ SELECTED ] Option 1: wind speed for a month and year")
		month, err := m.prompter.Month()
		if err != nil {
			return err
		}
		year, err := m.prompter.Year()
		if err != nil {
			return err
		}
		m.logger.Debug("rendering report", "option", 1, "month", month, "year", year)
		m.renderer.WindSpeedForMonth(month, year)
	case '2':
		fmt.Fprintln(m.out, "[ SELECTED ] Option 2: monthly temperature for a year")
		year, err := m.prompter.Year()
		if err != nil {
			return err
		}
		m.logger.Debug("rendering report", "option", 2, "year", year)
		m.renderer.TemperatureByMonth(year)
	case '3':
		fmt.Fprintln(m.out, "[ SELECTED ] Option 3: monthly solar radiation for a year")
		year, err := m.prompter.Year()
		if err != nil {
			return err
		}
		m.logger.Debug("rendering report", "option", 3, "year", year)
		m.renderer.SolarEnergyByMonth(year)
	case '4':
		fmt.Fprintln(m.out, "[ SELECTED ] Option 4: all measurements for a year")
		year, err := m.prompter.Year()
		if err != nil {
			return err
		}
		m.logger.Debug("rendering report", "option", 4, "year", year)
		rows := m.renderer.Combined(year)
		m.logger.Info("combined report exported", "year", year, "rows", rows)
	case '5':
		fmt.Fprintln(m.out, "[ SELECTED ] Option 5: exit")
		return ErrExit
	case escapeKey:
		return ErrExit
	}
	return nil
}

// choice returns the first non-space character of line, or 0.
func choice(line string) byte {
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return 0
	}
	return line[0]
}
