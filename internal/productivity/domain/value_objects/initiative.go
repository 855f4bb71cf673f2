package value_objects

import (
	"errors"
	"strings"
)

// Initiative is the project or workstream a task belongs to.
type Initiative int

const (
	InitiativeMemberAutomations Initiative = iota + 1
	InitiativeRetainCustomers
	InitiativeGrimPodcast
	InitiativeCampaignWriting
	InitiativeGrimWeek
	InitiativeAffiliateSetup
	InitiativeNewFeatures
	InitiativeVideos
	InitiativeBugFixes
	InitiativeGeneral
)

var ErrInvalidInitiative = errors.New("invalid initiative")

var initiativeNames = map[Initiative]string{
	InitiativeMemberAutomations: "Member Automations",
	InitiativeRetainCustomers:   "Retain Customers",
	InitiativeGrimPodcast:       "THE GRIM Podcast",
	InitiativeCampaignWriting:   "Campaign Writing",
	InitiativeGrimWeek:          "GRIM Week",
	InitiativeAffiliateSetup:    "Affiliate Setup",
	InitiativeNewFeatures:       "New Features",
	InitiativeVideos:            "Videos",
	InitiativeBugFixes:          "Bug Fixes",
	InitiativeGeneral:           "General",
}

// Initiatives returns every initiative in canonical order.
func Initiatives() []Initiative {
	out := make([]Initiative, 0, len(initiativeNames))
	for i := InitiativeMemberAutomations; i <= InitiativeGeneral; i++ {
		out = append(out, i)
	}
	return out
}

// ParseInitiative matches an initiative by name, ignoring case and surrounding space.
func ParseInitiative(s string) (Initiative, error) {
	s = strings.TrimSpace(s)
	for i, name := range initiativeNames {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, ErrInvalidInitiative
}

func (i Initiative) String() string {
	if name, ok := initiativeNames[i]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the initiative is part of the closed set.
func (i Initiative) IsValid() bool {
	_, ok := initiativeNames[i]
	return ok
}

func (i Initiative) MarshalText() ([]byte, error) {
	if !i.IsValid() {
		return nil, ErrInvalidInitiative
	}
	return []byte(i.String()), nil
}

func (i *Initiative) UnmarshalText(text []byte) error {
	parsed, err := ParseInitiative(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
