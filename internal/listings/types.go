package listings

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Float is an optional numeric value. Invalid means the source value was
// missing or malformed; it is never coerced to zero.
type Float struct {
	Value float64
	Valid bool
}

// SomeFloat returns a defined Float.
func SomeFloat(v float64) Float { return Float{Value: v, Valid: true} }

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Int is an optional whole-number value.
type Int struct {
	Value int
	Valid bool
}

// SomeInt returns a defined Int.
func SomeInt(v int) Int { return Int{Value: v, Valid: true} }

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Value)
}

// Flag is a tri-state boolean recoded from the export's t/f columns.
type Flag int8

const (
	FlagUnknown Flag = iota
	FlagFalse
	FlagTrue
)

// ParseFlag maps "t" to true and "f" to false. Everything else is unknown.
func ParseFlag(s string) Flag {
	switch s {
	case "t":
		return FlagTrue
	case "f":
		return FlagFalse
	default:
		return FlagUnknown
	}
}

// Known reports whether the flag carries a value.
func (f Flag) Known() bool { return f != FlagUnknown }

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unknown"
	}
}

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagTrue:
		return []byte("true"), nil
	case FlagFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true":
		*f = FlagTrue
	case "false":
		*f = FlagFalse
	case "null":
		*f = FlagUnknown
	default:
		return fmt.Errorf("invalid flag %s", b)
	}
	return nil
}

// Flag column names in the listings export.
const (
	ColSuperhost        = "host_is_superhost"
	ColHasProfilePic    = "host_has_profile_pic"
	ColIdentityVerified = "host_identity_verified"
	ColInstantBookable  = "instant_bookable"
	ColHasAvailability  = "has_availability"
)

// FlagColumns lists the recoded t/f columns in export order.
var FlagColumns = []string{
	ColSuperhost, ColHasProfilePic, ColIdentityVerified, ColInstantBookable, ColHasAvailability,
}

// flagLabels holds the {true, false} display labels per flag column.
var flagLabels = map[string][2]string{
	ColSuperhost:        {"Superhost", "Not Superhost"},
	ColHasProfilePic:    {"Has Profile Pic", "No Profile Pic"},
	ColIdentityVerified: {"Identity Verified", "Identity Not Verified"},
	ColInstantBookable:  {"Instant Bookable", "Not Instant Bookable"},
	ColHasAvailability:  {"Available", "Not Available"},
}

// FlagStyle selects how tri-state flags are rendered in tables, exports and charts.
type FlagStyle int

const (
	StyleLabel FlagStyle = iota
	StyleBinary
	StyleBool
)

// ParseFlagStyle accepts "label", "binary" or "bool". Empty means label.
func ParseFlagStyle(s string) (FlagStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "label", "labels":
		return StyleLabel, nil
	case "binary", "01":
		return StyleBinary, nil
	case "bool", "boolean":
		return StyleBool, nil
	default:
		return StyleLabel, fmt.Errorf("invalid flag style %q (use label, binary or bool)", s)
	}
}

func (s FlagStyle) String() string {
	switch s {
	case StyleBinary:
		return "binary"
	case StyleBool:
		return "bool"
	default:
		return "label"
	}
}

// Format renders a flag of the given column. Unknown renders as "".
func (s FlagStyle) Format(column string, f Flag) string {
	if !f.Known() {
		return ""
	}
	switch s {
	case StyleBinary:
		if f == FlagTrue {
			return "1"
		}
		return "0"
	case StyleBool:
		return f.String()
	}
	labels, ok := flagLabels[column]
	if !ok {
		return f.String()
	}
	if f == FlagTrue {
		return labels[0]
	}
	return labels[1]
}

// HostType buckets a host by how many listings they manage.
type HostType string

const (
	HostTypeUnknown HostType = ""
	HostTypeSingle  HostType = "1 Listing Host"
	HostTypeSmall   HostType = "2-5 Listings Host"
	HostTypeLarge   HostType = ">5 Listings Host"
)

// HostTypes lists the known host types in display order.
var HostTypes = []HostType{HostTypeSingle, HostTypeSmall, HostTypeLarge}

// ClassifyHost buckets a host listing count. Counts of 1 and 5 belong to the
// lower bucket; zero, negative and missing counts are unknown.
func ClassifyHost(n Int) HostType {
	switch {
	case !n.Valid || n.Value < 1:
		return HostTypeUnknown
	case n.Value == 1:
		return HostTypeSingle
	case n.Value <= 5:
		return HostTypeSmall
	default:
		return HostTypeLarge
	}
}

// ParseHostType accepts a host type label, or the short forms "1", "2-5", ">5".
func ParseHostType(s string) (HostType, error) {
	switch strings.TrimSpace(s) {
	case "":
		return HostTypeUnknown, nil
	case string(HostTypeSingle), "1", "single":
		return HostTypeSingle, nil
	case string(HostTypeSmall), "2-5", "small":
		return HostTypeSmall, nil
	case string(HostTypeLarge), ">5", "6+", "large":
		return HostTypeLarge, nil
	default:
		return HostTypeUnknown, fmt.Errorf("invalid host type %q", s)
	}
}

// Rank orders host types for display; unknown sorts last.
func (h HostType) Rank() int {
	for i, t := range HostTypes {
		if t == h {
			return i
		}
	}
	return len(HostTypes)
}

// Known reports whether the host type was derived.
func (h HostType) Known() bool { return h != HostTypeUnknown }

func (h HostType) MarshalJSON() ([]byte, error) {
	if h == HostTypeUnknown {
		return []byte("null"), nil
	}
	return json.Marshal(string(h))
}

// Listing is one cleaned accommodation record.
type Listing struct {
	HostID       string `json:"host_id,omitempty"`
	Neighborhood string `json:"neighborhood"`

	Price          Float `json:"price_num"`
	Accommodates   Int   `json:"accommodates"`
	PricePerPerson Float `json:"price_per_person"`

	HostResponseRate   Float `json:"host_response_rate"`
	HostAcceptanceRate Float `json:"host_acceptance_rate"`

	HostIsSuperhost      Flag `json:"host_is_superhost"`
	HostHasProfilePic    Flag `json:"host_has_profile_pic"`
	HostIdentityVerified Flag `json:"host_identity_verified"`
	InstantBookable      Flag `json:"instant_bookable"`
	HasAvailability      Flag `json:"has_availability"`

	HostListingsCount Int      `json:"host_listings_count"`
	HostType          HostType `json:"host_type"`
	HostTenure        Int      `json:"host_tenure"`

	ReviewScoresRating Float `json:"review_scores_rating"`
}

// flag returns the listing's value for a flag column.
func (l Listing) flag(column string) Flag {
	switch column {
	case ColSuperhost:
		return l.HostIsSuperhost
	case ColHasProfilePic:
		return l.HostHasProfilePic
	case ColIdentityVerified:
		return l.HostIdentityVerified
	case ColInstantBookable:
		return l.InstantBookable
	case ColHasAvailability:
		return l.HasAvailability
	}
	return FlagUnknown
}

func (l *Listing) setFlag(column string, f Flag) {
	switch column {
	case ColSuperhost:
		l.HostIsSuperhost = f
	case ColHasProfilePic:
		l.HostHasProfilePic = f
	case ColIdentityVerified:
		l.HostIdentityVerified = f
	case ColInstantBookable:
		l.InstantBookable = f
	case ColHasAvailability:
		l.HasAvailability = f
	}
}
