package status

import "testing"

func TestEveryStatusHasLabelAndColor(t *testing.T) {
	for _, s := range All {
		if Label(s) == fallbackLabel {
			t.Errorf("status %s has no label", s)
		}
		if Color(s) == fallbackColor {
			t.Errorf("status %s has no color", s)
		}
		if !Known(s) {
			t.Errorf("status %s not reported as known", s)
		}
	}
}

func TestUnknownStatusFallsBack(t *testing.T) {
	for _, s := range []string{"", "thinking", "garbage"} {
		if Known(s) {
			t.Errorf("%q should not be known", s)
		}
		if Label(s) != fallbackLabel {
			t.Errorf("Label(%q) = %q, want fallback", s, Label(s))
		}
		if Color(s) != fallbackColor {
			t.Errorf("Color(%q) = %q, want fallback", s, Color(s))
		}
	}
}

func TestTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{New, InProccess},
		{New, Canceled},
		{InProccess, Working},
		{InProccess, New},
		{Working, ClosedWithoutRepeat},
		{ClosedWithoutRepeat, SentToCash},
		{SentToCash, ClosedFinally},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}
	blocked := []struct{ from, to string }{
		{New, Working},
		{Working, New},
		{ClosedFinally, New},
		{Canceled, New},
		{SentToCash, Working},
	}
	for _, tr := range blocked {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be blocked", tr.from, tr.to)
		}
	}
}

func TestTabMatches(t *testing.T) {
	for _, s := range All {
		if !TabMatches(TabAll, s) {
			t.Errorf("all tab should match %s", s)
		}
	}
	if !TabMatches(TabInProgress, InProccess) || !TabMatches(TabInProgress, Working) {
		t.Error("in_progress tab should cover in_proccess and working")
	}
	if TabMatches(TabInProgress, New) || TabMatches(TabInProgress, ClosedFinally) {
		t.Error("in_progress tab matched a status outside the group")
	}
	for _, s := range []string{ClosedWithoutRepeat, ClosedFinally, Canceled} {
		if !TabMatches(TabClosed, s) {
			t.Errorf("closed tab should cover %s", s)
		}
	}
	if TabMatches(TabClosed, SentToCash) {
		t.Error("sent_to_cash has its own tab, not the closed group")
	}
	if !TabMatches(New, New) || TabMatches(New, Working) {
		t.Error("status tab should match exactly the status")
	}
}

func TestTabSortDirection(t *testing.T) {
	for _, tab := range []string{TabInProgress, InProccess, Working} {
		if !TabSortsAscending(tab) {
			t.Errorf("tab %s should sort oldest first", tab)
		}
	}
	for _, tab := range []string{TabAll, TabClosed, New, ClosedFinally} {
		if TabSortsAscending(tab) {
			t.Errorf("tab %s should sort newest first", tab)
		}
	}
}

func TestTabLabels(t *testing.T) {
	for _, tab := range Tabs {
		if !KnownTab(tab) {
			t.Errorf("tab %s not recognized", tab)
		}
		if TabLabel(tab) == fallbackLabel {
			t.Errorf("tab %s has no label", tab)
		}
	}
	if KnownTab("bogus") {
		t.Error("bogus tab recognized")
	}
}
