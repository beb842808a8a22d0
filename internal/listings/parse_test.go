package listings

import (
	"math"
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"$1,234.00", 1234, true},
		{"$85.00", 85, true},
		{"120", 120, true},
		{" $40.5 ", 40.5, true},
		{"$1,000,000", 1000000, true},
		{"", 0, false},
		{"free", 0, false},
		{"$", 0, false},
		{"-$10.00", 0, false},
		{"$12.00/night", 0, false},
	}
	for _, c := range cases {
		got := parsePrice(c.in)
		if got.Valid != c.valid {
			t.Fatalf("parsePrice(%q) valid=%v want %v", c.in, got.Valid, c.valid)
		}
		if c.valid && math.Abs(got.Value-c.want) > 1e-9 {
			t.Fatalf("parsePrice(%q)=%v want %v", c.in, got.Value, c.want)
		}
	}
}

func TestPerPersonUndefinedForZeroCapacity(t *testing.T) {
	if got := perPerson(SomeFloat(100), SomeInt(4)); !got.Valid || got.Value != 25 {
		t.Fatalf("expected 25, got %+v", got)
	}
	for _, c := range []Int{SomeInt(0), {}, SomeInt(-2)} {
		got := perPerson(SomeFloat(100), c)
		if got.Valid {
			t.Fatalf("expected undefined for capacity %+v, got %v", c, got.Value)
		}
		if math.IsInf(got.Value, 0) || math.IsNaN(got.Value) {
			t.Fatalf("undefined value must not carry Inf/NaN: %v", got.Value)
		}
	}
	if got := perPerson(Float{}, SomeInt(2)); got.Valid {
		t.Fatalf("expected undefined when price is unknown")
	}
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"93%", 0.93, true},
		{"100%", 1, true},
		{"0%", 0, true},
		{"50", 0.5, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"150%", 0, false},
		{"-5%", 0, false},
	}
	for _, c := range cases {
		got := parsePercent(c.in)
		if got.Valid != c.valid {
			t.Fatalf("parsePercent(%q) valid=%v want %v", c.in, got.Valid, c.valid)
		}
		if c.valid && math.Abs(got.Value-c.want) > 1e-9 {
			t.Fatalf("parsePercent(%q)=%v want %v", c.in, got.Value, c.want)
		}
		if got.Valid && (got.Value < 0 || got.Value > 1) {
			t.Fatalf("rate out of [0,1]: %v", got.Value)
		}
	}
}

func TestParseFlag(t *testing.T) {
	cases := map[string]Flag{
		"t": FlagTrue, "f": FlagFalse, "": FlagUnknown, "T": FlagUnknown,
		"true": FlagUnknown, "yes": FlagUnknown, "1": FlagUnknown,
	}
	for in, want := range cases {
		if got := ParseFlag(in); got != want {
			t.Fatalf("ParseFlag(%q)=%v want %v", in, got, want)
		}
	}
}

func TestClassifyHostBoundaries(t *testing.T) {
	cases := []struct {
		n    Int
		want HostType
	}{
		{SomeInt(1), HostTypeSingle},
		{SomeInt(2), HostTypeSmall},
		{SomeInt(5), HostTypeSmall},
		{SomeInt(6), HostTypeLarge},
		{SomeInt(250), HostTypeLarge},
		{SomeInt(0), HostTypeUnknown},
		{SomeInt(-3), HostTypeUnknown},
		{Int{}, HostTypeUnknown},
	}
	for _, c := range cases {
		if got := ClassifyHost(c.n); got != c.want {
			t.Fatalf("ClassifyHost(%+v)=%q want %q", c.n, got, c.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	if got := parseCount("3"); !got.Valid || got.Value != 3 {
		t.Fatalf("3: %+v", got)
	}
	if got := parseCount("3.0"); !got.Valid || got.Value != 3 {
		t.Fatalf("3.0: %+v", got)
	}
	for _, in := range []string{"", "2.5", "many", "NaN"} {
		if got := parseCount(in); got.Valid {
			t.Fatalf("parseCount(%q) should be undefined, got %d", in, got.Value)
		}
	}
}

func TestTenure(t *testing.T) {
	cases := []struct {
		since, scraped string
		want           int
		valid          bool
	}{
		{"2015-03-01", "2023-09-20", 8, true},
		{"2023-12-31", "2024-01-01", 1, true},
		{"2020/06/15", "2020-06-14", 0, true},
		{"6/15/2012", "2023-09-20T04:00:00Z", 11, true},
		{"2012-01-01 10:00:00", "2023-09-20", 11, true},
		{"", "2023-09-20", 0, false},
		{"2015-03-01", "yesterday", 0, false},
	}
	for _, c := range cases {
		got := tenure(c.since, c.scraped)
		if got.Valid != c.valid || (c.valid && got.Value != c.want) {
			t.Fatalf("tenure(%q,%q)=%+v want %d/%v", c.since, c.scraped, got, c.want, c.valid)
		}
	}
}

func TestFlagStyleFormat(t *testing.T) {
	if got := StyleLabel.Format(ColSuperhost, FlagTrue); got != "Superhost" {
		t.Fatalf("label true: %q", got)
	}
	if got := StyleLabel.Format(ColSuperhost, FlagFalse); got != "Not Superhost" {
		t.Fatalf("label false: %q", got)
	}
	if got := StyleBinary.Format(ColInstantBookable, FlagTrue); got != "1" {
		t.Fatalf("binary true: %q", got)
	}
	if got := StyleBool.Format(ColHasAvailability, FlagFalse); got != "false" {
		t.Fatalf("bool false: %q", got)
	}
	for _, s := range []FlagStyle{StyleLabel, StyleBinary, StyleBool} {
		if got := s.Format(ColSuperhost, FlagUnknown); got != "" {
			t.Fatalf("%v unknown should render empty, got %q", s, got)
		}
	}
	if _, err := ParseFlagStyle("emoji"); err == nil {
		t.Fatalf("expected error for unknown style")
	}
	if s, err := ParseFlagStyle("Binary"); err != nil || s != StyleBinary {
		t.Fatalf("ParseFlagStyle(Binary)=%v,%v", s, err)
	}
}
