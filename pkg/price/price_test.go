package price

import (
	"errors"
	"testing"

	"github.com/joripage/limitbook/pkg/orderbook"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want orderbook.Price
	}{
		{"99.50", 9950},
		{"100", 10000},
		{"0.01", 1},
		{"10.005", 1001},  // half-up
		{"10.004", 1000},  // below half rounds down
		{"10.0049", 1000},
		{"123.456", 12346},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "10..5", "$10"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("Parse(%q) should fail with ErrInvalidPrice, got %v", in, err)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   orderbook.Price
		want string
	}{
		{9950, "99.50"},
		{10000, "100.00"},
		{1, "0.01"},
		{100, "1.00"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatMid(t *testing.T) {
	// Whole-cent midpoint keeps two places.
	if got := FormatMid(10000); got != "100.00" {
		t.Errorf("FormatMid(10000) = %q, want 100.00", got)
	}
	// Half-cent midpoint keeps the extra digit.
	if got := FormatMid(10000.5); got != "100.005" {
		t.Errorf("FormatMid(10000.5) = %q, want 100.005", got)
	}
}
