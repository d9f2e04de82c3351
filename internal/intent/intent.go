package intent

import "fmt"

// Intent is the semantic meaning of a consent control's label.
type Intent int

const (
	// Unknown is the zero value: the label matched no rule.
	Unknown Intent = iota
	// Deny rejects all non-essential processing ("Reject all", "Alle ablehnen").
	Deny
	// Accept grants consent ("Accept all"). Never clicked by the engine.
	Accept
	// Manage opens a preferences or vendor panel ("Cookie settings").
	Manage
	// Confirm persists the current selection ("Save choices", "Confirm").
	Confirm
)

// classifyOrder is the tie-break order when several built-in families could
// match the same label: a denial reading always wins over a consenting one.
var classifyOrder = [...]Intent{Deny, Confirm, Manage, Accept}

func (i Intent) String() string {
	switch i {
	case Deny:
		return "deny"
	case Accept:
		return "accept"
	case Manage:
		return "manage"
	case Confirm:
		return "confirm"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// ParseIntent maps the wire form back to an Intent. Unrecognized input
// returns Unknown with an error so callers can reject bad payloads.
func ParseIntent(s string) (Intent, error) {
	switch s {
	case "deny":
		return Deny, nil
	case "accept":
		return Accept, nil
	case "manage":
		return Manage, nil
	case "confirm":
		return Confirm, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown intent: %q", s)
	}
}

// MarshalText makes Intent serialize as its string form in JSON payloads.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText accepts the string form; bad input is an error, not a panic.
func (i *Intent) UnmarshalText(data []byte) error {
	parsed, err := ParseIntent(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
