// Package prompt reads validated month and year values from an interactive
// console.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Accepted input ranges. Years are exclusive on both ends.
const (
	MinMonth = 1
	MaxMonth = 12

	YearAfter  = 2010
	YearBefore = 2030
)

// Messages written to the console.
const (
	SelectionInput      = "> "
	MonthRangeMsg       = "[ INFO ] Enter a month (1 - 12)"
	YearRangeMsg        = "[ INFO ] Enter a year (2011 - 2029)"
	InvalidNumericEntry = "[ ERROR ] Invalid numeric entry"
)

// Prompter reads answers from in and writes prompts to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &Prompter{in: br, out: out}
}

// Month prompts until a month in [1,12] is entered. The only error is the end
// of input.
func (p *Prompter) Month() (int, error) {
	return p.readInt(MonthRangeMsg, ValidMonth)
}

// Year prompts until a year in (2010, 2030) is entered. The only error is the
// end of input.
func (p *Prompter) Year() (int, error) {
	return p.readInt(YearRangeMsg, ValidYear)
}

// ValidMonth reports whether v is a calendar month.
func ValidMonth(v int) bool { return v >= MinMonth && v <= MaxMonth }

// ValidYear reports whether v is a queryable year.
func ValidYear(v int) bool { return v > YearAfter && v < YearBefore }

// readInt loops until valid accepts a parsed value. Parse failures are
// reported on every attempt; out of range values only trigger a new prompt.
func (p *Prompter) readInt(hint string, valid func(int) bool) (int, error) {
	for {
		fmt.Fprintf(p.out, "%s\n%s", hint, SelectionInput)

		token, err := p.Token()
		if err != nil {
			return 0, err
		}
		if token == "" {
			continue
		}

		v, err := strconv.Atoi(token)
		if err != nil {
			fmt.Fprintln(p.out, InvalidNumericEntry)
			continue
		}
		if valid(v) {
			return v, nil
		}
	}
}

// Token returns the first whitespace separated word of the next line, or ""
// for a blank line.
func (p *Prompter) Token() (string, error) {
	line, err := p.Line()
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

// Line reads the next line without its terminator. A final line without a
// newline is returned before io.EOF.
func (p *Prompter) Line() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
