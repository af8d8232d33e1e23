package dice

import (
	"context"
	"testing"

	"github.com/freekieb7/werver/test"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Roll
		str   string
	}{
		{"d20", Roll{Type: D20, Count: 1}, "1 d20"},
		{"2d6", Roll{Type: D6, Count: 2}, "2 d6"},
		{"2d6kh1", Roll{Type: D6, Count: 2, Keep: KeepHighest, Kept: 1}, "2 d6, keeping highest 1 rolls"},
		{"12d4kl5", Roll{Type: D4, Count: 12, Keep: KeepLowest, Kept: 5}, "12 d4, keeping lowest 5 rolls"},
		{"3d100", Roll{Type: D100, Count: 3}, "3 d100"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			roll, err := Parse(tt.input)
			test.AssertNoError(t, err)
			test.AssertEqual(t, tt.want, roll)
			test.AssertEqual(t, tt.str, roll.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"6":                  "Invalid dice string: 6",
		"2d6kx1":             "Invalid dice string: 2d6kx1",
		"2d6k":               "Invalid dice string: 2d6k",
		"2d7":                "Unknown dice type: 7",
		"2d":                 "Unknown dice type: ",
		"xd6":                "strconv.Atoi: parsing \"x\": invalid syntax",
		"1001d6":             "Invalid dice string: 1001d6",
		"-1d6":               "Invalid dice string: -1d6",
		"1000000000000000d6": "Invalid dice string: 1000000000000000d6",
		"2d6khx":             "strconv.Atoi: parsing \"x\": invalid syntax",
	}

	for input, message := range tests {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("%q: expected error", input)
			continue
		}
		test.AssertEqual(t, message, err.Error())
	}
}

func TestParseMaxCount(t *testing.T) {
	roll, err := Parse("1000d100kh1")
	test.AssertNoError(t, err)
	test.AssertEqual(t, MaxCount, roll.Count)
}

func TestSum(t *testing.T) {
	rolls := []int{3, 6, 1, 4}

	test.AssertEqual(t, 14, Sum(rolls, KeepAll, 0))
	test.AssertEqual(t, 10, Sum(rolls, KeepHighest, 2))
	test.AssertEqual(t, 4, Sum(rolls, KeepLowest, 2))
	test.AssertEqual(t, 14, Sum(rolls, KeepHighest, 10))
	test.AssertEqual(t, 0, Sum(rolls, KeepLowest, 0))

	// Sum must not reorder the caller's slice.
	test.AssertEqual(t, 3, rolls[0])
}

func TestRollStaysInRange(t *testing.T) {
	roll, err := Parse("4d6kh3")
	test.AssertNoError(t, err)

	for range 1000 {
		total := roll.Roll(context.Background())
		if total < 3 || total > 18 {
			t.Fatalf("roll %d out of range [3, 18]", total)
		}
	}
}
