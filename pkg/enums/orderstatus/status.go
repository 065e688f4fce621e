package orderstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Confirmed Status
	Preparing Status
	Ready     Status
	Served    Status
}

var Statuses = Enum{
	Confirmed: Status{Name: "confirmed"},
	Preparing: Status{Name: "preparing"},
	Ready:     Status{Name: "ready"},
	Served:    Status{Name: "served"},
}

var All = []Status{
	Statuses.Confirmed,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Served,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Next returns the natural follow-up status for staff advance actions.
// Served is terminal for board purposes.
func Next(name string) (Status, bool) {
	switch name {
	case Statuses.Confirmed.Name:
		return Statuses.Preparing, true
	case Statuses.Preparing.Name:
		return Statuses.Ready, true
	case Statuses.Ready.Name:
		return Statuses.Served, true
	default:
		return Status{}, false
	}
}

// IsTerminal reports whether an order in this status has left the boards.
func IsTerminal(name string) bool {
	return name == Statuses.Served.Name
}
