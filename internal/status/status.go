// Package status defines the order lifecycle taxonomy: the canonical status
// enumeration, display labels and colors, and the tab grouping used by the
// order board.
package status

// Order lifecycle statuses, in display order. The spelling in_proccess is
// the backend's, kept verbatim. The old thinking pre-state is deprecated and
// intentionally absent; values outside this set fall back to Unknown
// handling.
const (
	New                 = "new"
	InProccess          = "in_proccess"
	Working             = "working"
	ClosedWithoutRepeat = "closed_without_repeat"
	SentToCash          = "sent_to_cash"
	ClosedFinally       = "closed_finally"
	Canceled            = "canceled"
)

// All lists the canonical statuses in display order.
var All = []string{
	New,
	InProccess,
	Working,
	ClosedWithoutRepeat,
	SentToCash,
	ClosedFinally,
	Canceled,
}

const (
	fallbackLabel = "Неизвестный статус"
	fallbackColor = "#9e9e9e"
)

var labels = map[string]string{
	New:                 "Новый",
	InProccess:          "Логист выдал",
	Working:             "Инженер принял",
	ClosedWithoutRepeat: "На рассмотрении",
	SentToCash:          "На кассу",
	ClosedFinally:       "Успешно закрыт",
	Canceled:            "Отменено",
}

var colors = map[string]string{
	New:                 "#1976d2",
	InProccess:          "#ed6c02",
	Working:             "#2e747d",
	ClosedWithoutRepeat: "#9c27b0",
	SentToCash:          "#00838f",
	ClosedFinally:       "#2e7d32",
	Canceled:            "#d32f2f",
}

// Label returns the display label for a status, with a fixed fallback for
// unknown values.
func Label(s string) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return fallbackLabel
}

// Color returns the display color (hex) for a status, with a fixed fallback
// for unknown values.
func Color(s string) string {
	if c, ok := colors[s]; ok {
		return c
	}
	return fallbackColor
}

// Known reports whether s is one of the canonical statuses.
func Known(s string) bool {
	_, ok := labels[s]
	return ok
}

// Valid transitions between statuses; the server is authoritative, this is
// used by the dev server and for local sanity checks.
var transitions = map[string][]string{
	New:                 {InProccess, Canceled},
	InProccess:          {Working, New, Canceled},
	Working:             {ClosedWithoutRepeat, Canceled},
	ClosedWithoutRepeat: {SentToCash},
	SentToCash:          {ClosedFinally},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
