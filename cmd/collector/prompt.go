package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-jobposting-collector/internal/models"
)

// clearToken empties a field instead of keeping its current value.
const clearToken = "-"

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &prompter{in: scanner, out: out}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// field shows the current value and returns the edited one. Enter keeps it.
func (p *prompter) field(name, current string) (string, error) {
	shown := current
	if runes := []rune(shown); len(runes) > 60 {
		shown = string(runes[:57]) + "..."
	}
	answer, err := p.line(fmt.Sprintf("  %-16s [%s]: ", name, shown))
	if err != nil {
		return "", err
	}
	switch answer {
	case "":
		return current, nil
	case clearToken:
		return "", nil
	default:
		return answer, nil
	}
}

func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.line(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// edit walks the reviewer through every field of rec.
func (p *prompter) edit(rec models.JobRecord) (models.JobRecord, error) {
	fmt.Fprintf(p.out, "Edit fields (Enter keeps, %q clears):\n", clearToken)

	text := []struct {
		name string
		dst  *string
	}{
		{"Position", &rec.Position},
		{"Company", &rec.Company},
		{"Posting URL", &rec.PostingURL},
		{"City", &rec.City},
		{"Country", &rec.Country},
	}
	for _, f := range text {
		v, err := p.field(f.name, *f.dst)
		if err != nil {
			return rec, err
		}
		*f.dst = v
	}

	arrangement, err := p.field("Work (remote/hybrid/on-site)", string(rec.WorkArrangement))
	if err != nil {
		return rec, err
	}
	rec.WorkArrangement = models.WorkArrangement(arrangement)

	demand, err := p.field("Demand", string(rec.Demand))
	if err != nil {
		return rec, err
	}
	rec.Demand = models.Demand(demand)

	match, err := p.field("Match (low/medium/high)", string(rec.Match))
	if err != nil {
		return rec, err
	}
	rec.Match = models.Match(strings.ToLower(match))

	for {
		current := ""
		if rec.Budget != nil {
			current = strconv.FormatFloat(*rec.Budget, 'f', -1, 64)
		}
		raw, err := p.field("Budget", current)
		if err != nil {
			return rec, err
		}
		budget, err := parseBudget(raw)
		if err == nil {
			rec.Budget = budget
			break
		}
		fmt.Fprintf(p.out, "  ⚠️ %v\n", err)
	}
	return rec, nil
}

func parseBudget(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil, errors.New("budget must be a number")
	}
	if v < 0 {
		return nil, errors.New("budget must not be negative")
	}
	return &v, nil
}

func printRecord(out io.Writer, rec models.JobRecord) {
	fmt.Fprintf(out, "  Position:    %s\n", orDash(rec.Position))
	fmt.Fprintf(out, "  Company:     %s\n", orDash(rec.Company))
	fmt.Fprintf(out, "  Location:    %s\n", orDash(strings.Trim(rec.City+", "+rec.Country, ", ")))
	fmt.Fprintf(out, "  Work:        %s\n", orDash(string(rec.WorkArrangement)))
	fmt.Fprintf(out, "  Demand:      %s\n", orDash(string(rec.Demand)))
	fmt.Fprintf(out, "  Description: %d characters\n", len([]rune(rec.JobDescription)))
	fmt.Fprintf(out, "  URL:         %s\n", rec.PostingURL)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
