package core

// Verdicts the deal-note prompt asks the model to choose from.
const (
	VerdictInvest      = "Invest"
	VerdictConsider    = "Consider"
	VerdictDoNotInvest = "Do Not Invest"
)

// NoVerdict is stored when the model returns nothing usable.
const NoVerdict = "No verdict generated"

// Verdicts lists the accepted verdicts in prompt order.
var Verdicts = []string{VerdictInvest, VerdictConsider, VerdictDoNotInvest}

// IsKnownVerdict reports whether v is one of Verdicts. Verdicts are stored as
// produced; this is only used to flag unexpected model output.
func IsKnownVerdict(v string) bool {
	for _, known := range Verdicts {
		if v == known {
			return true
		}
	}
	return false
}
