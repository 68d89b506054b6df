package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FeeResolver supplies maker/taker fees (as decimals, 0.0005 == 0.05%) when
// the sniffer could not determine them. The orchestrator calls it before any
// optimization step so the core never runs with unknown fees.
type FeeResolver interface {
	ResolveFees(exchangeID string) (maker, taker float64, err error)
}

// TerminalFeeResolver asks the user interactively. Percent inputs are
// converted to decimals; malformed or negative values re-prompt.
type TerminalFeeResolver struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminalFeeResolver(in io.Reader, out io.Writer) *TerminalFeeResolver {
	return &TerminalFeeResolver{in: bufio.NewScanner(in), out: out}
}

func (r *TerminalFeeResolver) ResolveFees(exchangeID string) (float64, float64, error) {
	fmt.Fprintf(r.out, "\nEXCHANGE DATA NOT AVAILABLE FOR FEES\n")
	fmt.Fprintf(r.out, "Please enter the fee tier for %s manually.\n", exchangeID)

	for {
		maker, err := r.askPercent(fmt.Sprintf("Enter maker fee (%%) for %s (e.g. 0.05): ", exchangeID))
		if err == errBadInput {
			fmt.Fprintf(r.out, "Invalid input. Please enter a numeric percentage (e.g. 0.05).\n")
			continue
		}
		if err != nil {
			return 0, 0, err
		}

		taker, err := r.askPercent(fmt.Sprintf("Enter taker fee (%%) for %s (e.g. 0.05): ", exchangeID))
		if err == errBadInput {
			fmt.Fprintf(r.out, "Invalid input. Please enter a numeric percentage (e.g. 0.05).\n")
			continue
		}
		if err != nil {
			return 0, 0, err
		}

		fmt.Fprintf(r.out, "Using maker %.4f | taker %.4f\n\n", maker, taker)
		return maker, taker, nil
	}
}

var errBadInput = fmt.Errorf("bad fee input")

func (r *TerminalFeeResolver) askPercent(prompt string) (float64, error) {
	fmt.Fprint(r.out, prompt)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return 0, fmt.Errorf("reading fee input: %w", err)
		}
		return 0, fmt.Errorf("fee input stream closed")
	}

	pct, err := strconv.ParseFloat(strings.TrimSpace(r.in.Text()), 64)
	if err != nil || pct < 0 {
		return 0, errBadInput
	}
	return pct / 100, nil
}
