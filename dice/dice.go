// Package dice parses and rolls dice expressions such as "2d6" or "4d6kh3".
package dice

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/freekieb7/werver/dice"

var (
	meter   = otel.Meter(name)
	rollCnt metric.Int64Counter
)

func init() {
	var err error
	rollCnt, err = meter.Int64Counter("dice.rolls",
		metric.WithDescription("The number of rolls by dice expression"),
		metric.WithUnit("{roll}"))
	if err != nil {
		panic(err)
	}
}

type Type uint32

const (
	D4   Type = 4
	D6   Type = 6
	D8   Type = 8
	D10  Type = 10
	D12  Type = 12
	D20  Type = 20
	D100 Type = 100
)

func (t Type) String() string {
	return "d" + strconv.FormatUint(uint64(t), 10)
}

func parseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "4":
		return D4, nil
	case "6":
		return D6, nil
	case "8":
		return D8, nil
	case "10":
		return D10, nil
	case "12":
		return D12, nil
	case "20":
		return D20, nil
	case "100":
		return D100, nil
	}
	return 0, fmt.Errorf("Unknown dice type: %s", s)
}

// MaxCount bounds the dice rolled by one expression.
const MaxCount = 1000

type Keep uint8

const (
	KeepAll Keep = iota
	KeepHighest
	KeepLowest
)

// Roll describes a number of dice of one type and which of the rolled
// dice count towards the total.
type Roll struct {
	Type  Type
	Count int
	Keep  Keep
	Kept  int
}

// Parse reads expressions of the form [count]d<type>[kh<n>|kl<n>]. The
// count defaults to 1 and may not exceed MaxCount.
func Parse(s string) (Roll, error) {
	var roll Roll

	rest := s
	if head, tokens, ok := strings.Cut(s, "k"); ok {
		if tokens == "" {
			return Roll{}, invalid(s)
		}

		kept, err := strconv.Atoi(tokens[1:])
		if err != nil {
			return Roll{}, err
		}
		if kept < 0 {
			return Roll{}, invalid(s)
		}

		switch tokens[0] {
		case 'h':
			roll.Keep = KeepHighest
		case 'l':
			roll.Keep = KeepLowest
		default:
			return Roll{}, invalid(s)
		}
		roll.Kept = kept
		rest = head
	}

	count, typ, ok := strings.Cut(rest, "d")
	if !ok {
		return Roll{}, invalid(s)
	}

	roll.Count = 1
	if count != "" {
		n, err := strconv.Atoi(count)
		if err != nil {
			return Roll{}, err
		}
		if n < 0 || n > MaxCount {
			return Roll{}, invalid(s)
		}
		roll.Count = n
	}

	t, err := parseType(typ)
	if err != nil {
		return Roll{}, err
	}
	roll.Type = t

	return roll, nil
}

func invalid(s string) error {
	return fmt.Errorf("Invalid dice string: %s", s)
}

// Roll rolls every die and sums the kept ones.
func (r Roll) Roll(ctx context.Context) int {
	rolls := make([]int, r.Count)
	for i := range rolls {
		rolls[i] = 1 + rand.IntN(int(r.Type))
	}

	total := Sum(rolls, r.Keep, r.Kept)
	rollCnt.Add(ctx, 1, metric.WithAttributes(attribute.String("dice.expression", r.String())))
	return total
}

// Sum totals rolls after applying the keep rule. Keeping more dice than
// were rolled keeps all of them.
func Sum(rolls []int, keep Keep, kept int) int {
	sorted := slices.Clone(rolls)
	slices.Sort(sorted)

	switch keep {
	case KeepHighest:
		slices.Reverse(sorted)
		sorted = sorted[:min(kept, len(sorted))]
	case KeepLowest:
		sorted = sorted[:min(kept, len(sorted))]
	}

	total := 0
	for _, v := range sorted {
		total += v
	}
	return total
}

func (r Roll) String() string {
	switch r.Keep {
	case KeepHighest:
		return fmt.Sprintf("%d %s, keeping highest %d rolls", r.Count, r.Type, r.Kept)
	case KeepLowest:
		return fmt.Sprintf("%d %s, keeping lowest %d rolls", r.Count, r.Type, r.Kept)
	}
	return fmt.Sprintf("%d %s", r.Count, r.Type)
}
