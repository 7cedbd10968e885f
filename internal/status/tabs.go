package status

// Tab keys for order list filtering. Besides one tab per status there are
// two composite groups: in_progress covers orders somewhere between dispatch
// and reporting, closed covers every terminal outcome.
const (
	TabAll        = "all"
	TabInProgress = "in_progress"
	TabClosed     = "closed"
)

// Tabs lists the tab keys in display order.
var Tabs = []string{
	TabAll,
	New,
	TabInProgress,
	ClosedWithoutRepeat,
	SentToCash,
	TabClosed,
}

var tabLabels = map[string]string{
	TabAll:        "Все",
	TabInProgress: "В работе (логист/инженер)",
	TabClosed:     "Закрытые",
}

// TabLabel returns the display label for a tab key. Status keys double as
// tab keys and reuse the status label.
func TabLabel(tab string) string {
	if l, ok := tabLabels[tab]; ok {
		return l
	}
	return Label(tab)
}

var groups = map[string][]string{
	TabInProgress: {InProccess, Working},
	TabClosed:     {ClosedWithoutRepeat, ClosedFinally, Canceled},
}

// TabMatches reports whether an order status belongs to a tab.
func TabMatches(tab, s string) bool {
	if tab == TabAll {
		return true
	}
	if members, ok := groups[tab]; ok {
		for _, m := range members {
			if m == s {
				return true
			}
		}
		return false
	}
	return tab == s
}

// TabSortsAscending reports whether a tab shows its backlog oldest first.
// In-progress work is handled in arrival order; every other tab shows the
// newest orders on top.
func TabSortsAscending(tab string) bool {
	switch tab {
	case TabInProgress, InProccess, Working:
		return true
	}
	return false
}

// KnownTab reports whether tab is a recognized tab key.
func KnownTab(tab string) bool {
	if tab == TabAll {
		return true
	}
	if _, ok := groups[tab]; ok {
		return true
	}
	return Known(tab)
}
