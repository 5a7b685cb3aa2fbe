// Package classify maps provider status labels to required human actions.
// Rules are an ordered table of exact-match literals so new provider texts
// are additive data, not new code paths in the sync loop.
package classify

// Provider status labels matched by the default rules. The provider returns
// these verbatim, HTML entities included, so they are matched verbatim.
const (
	// StatusPrePosting is emitted before the sender hands the parcel over.
	StatusPrePosting = "Receipt of data about consignment before posting."

	// StatusCallInformationLine is the provider's boilerplate shown when a
	// parcel has stalled and the only recourse is the CP information line.
	StatusCallInformationLine = "For&nbsp;more&nbsp;information&nbsp;please&nbsp;call&nbsp;" +
		"information&nbsp;line&nbsp;CP<br>at&nbsp;218&nbsp;218&nbsp;218&nbsp;on&nbsp;" +
		"working&nbsp;days&nbsp;from&nbsp;8.00&nbsp;a.m.&nbsp;to&nbsp;6.00&nbsp;p.m."
)

// Actions produced by the default rules.
const (
	ActionNotHandedOver = "The parcel has not been handed over for transport"
	ActionFileComplaint = "Please file a complaint with the Czech Post"
)

// Rule pairs a provider status literal with the action it requires.
type Rule struct {
	Status string
	Action string
}

// Classifier resolves a status label to an action using an ordered rule
// table; the first matching rule wins and unmatched statuses need no action.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier with the given rules.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefault creates a Classifier with the built-in rule table.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{Status: StatusPrePosting, Action: ActionNotHandedOver},
		{Status: StatusCallInformationLine, Action: ActionFileComplaint},
	}
}

// Classify returns the action required for status, or the empty string when
// no rule matches. It is pure and total.
func (c *Classifier) Classify(status string) string {
	for _, rule := range c.rules {
		if rule.Status == status {
			return rule.Action
		}
	}
	return ""
}
