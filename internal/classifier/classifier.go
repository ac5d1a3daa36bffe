// Package classifier translates conflict intensity and sentiment gap into
// the UI "semaphore" signal (C9): a fixed code, color, and icon a frontend
// can paint without knowing anything about the scoring underneath.
package classifier

// ActionSignal is the semaphore verdict handed to the UI layer.
type ActionSignal struct {
	Code  string `json:"code"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var (
	signalAbort     = ActionSignal{Code: "ABORT / CRASH", Color: "#FF0000", Icon: "skull"}
	signalTrap      = ActionSignal{Code: "TRAP / FAKE PUMP", Color: "#FACC15", Icon: "eye"}
	signalStrongBuy = ActionSignal{Code: "STRONG BUY", Color: "#22C55E", Icon: "rocket"}
	signalHodl      = ActionSignal{Code: "HODL / WAIT", Color: "#A855F7", Icon: "shield"}
	signalNone      = ActionSignal{Code: "NO SIGNAL", Color: "#64748B", Icon: "cloud-off"}
)

// NoSignal is returned by callers that short-circuit before any signal
// fetch produced data.
func NoSignal() ActionSignal { return signalNone }

// IsPanic is the panic heuristic: very negative average sentiment combined
// with high conflict (confusion) intensity.
func IsPanic(avgSentiment, maxConflict float64) bool {
	return avgSentiment < -0.35 && maxConflict > 0.65
}

// Classify runs the four-rule cascade. Rule order matters: panic dominates
// everything else regardless of conflict/sentiment values (invariant: panic
// rule always wins).
//
//  1. panic                                  -> ABORT / CRASH
//  2. high conflict + positive sentiment      -> TRAP / FAKE PUMP
//  3. low conflict + positive sentiment       -> STRONG BUY
//  4. otherwise                               -> HODL / WAIT
func Classify(conflict, sentiment float64, isPanic bool) ActionSignal {
	switch {
	case isPanic:
		return signalAbort
	case conflict > 0.70 && sentiment > 0.4:
		return signalTrap
	case conflict < 0.4 && sentiment > 0.3:
		return signalStrongBuy
	default:
		return signalHodl
	}
}
