package locale

import "testing"

func TestRankFollowsPriorityOrder(t *testing.T) {
	for i := 1; i < len(Priority); i++ {
		if Rank(Priority[i-1]) >= Rank(Priority[i]) {
			t.Errorf("expected %s to rank before %s", Priority[i-1], Priority[i])
		}
	}
}

func TestRankUnlistedSortsLast(t *testing.T) {
	for _, code := range []string{"xx", "pt-BR", "", "klingon"} {
		for _, listed := range Priority {
			if Rank(code) <= Rank(listed) {
				t.Errorf("expected unlisted %q to rank after %q", code, listed)
			}
		}
	}
}

func TestRankIsStable(t *testing.T) {
	if Rank("ru") != Rank("ru") {
		t.Error("rank must be stable")
	}
	if Rank("ru") != 0 {
		t.Errorf("expected ru at rank 0, got %d", Rank("ru"))
	}
	if Rank("en") != len(Priority)-1 {
		t.Errorf("expected en at rank %d, got %d", len(Priority)-1, Rank("en"))
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  RU ":   "ru",
		"PT-br":   "pt-BR",
		"ZH-Hans": "zh-hans",
		"zh-HANT": "zh-hant",
		"en":      "en",
		"":        "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"ru", "pt-BR", "en", "zh-hans", "zh-hant"}
	invalid := []string{"", "r", "rus", "pt-br", "PT-BR", "pt_BR", "zh-Hans", "zh-HANS"}
	for _, v := range valid {
		if !IsValid(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}
	for _, v := range invalid {
		if IsValid(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}

func TestEveryPriorityEntryIsValid(t *testing.T) {
	// The scoped-run endpoint validates Normalize(input) with IsValid, so
	// every code we rank must itself pass validation or it could never be
	// targeted.
	for _, code := range Priority {
		if Normalize(code) != code {
			t.Errorf("priority entry %q is not in normalized form", code)
		}
		if !IsValid(code) {
			t.Errorf("priority entry %q rejected by IsValid", code)
		}
	}
}
