package telegram

import (
	"testing"

	"github.com/botreach/verification-service-go/internal/model"
)

func TestClassifySuccess(t *testing.T) {
	cls := Classify(&Response{OK: true})
	if cls.Retry || cls.Outcome != model.OutcomeOK {
		t.Errorf("expected OK, got %+v", cls)
	}
}

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		name        string
		description string
		want        string
	}{
		{"blocked", "Forbidden: bot was blocked by the user", model.OutcomeBlocked},
		{"chat not found", "Bad Request: chat not found", model.OutcomeNotStarted},
		{"unrecognized", "Bad Request: something else", model.OutcomeOtherError},
		{"case insensitive blocked", "FORBIDDEN: BOT WAS BLOCKED BY THE USER", model.OutcomeBlocked},
		{"empty description", "", model.OutcomeOtherError},
	}

	for _, tc := range cases {
		cls := Classify(&Response{OK: false, Description: tc.description})
		if cls.Retry {
			t.Errorf("%s: unexpected retry for %q", tc.name, tc.description)
			continue
		}
		if cls.Outcome != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, cls.Outcome, tc.want)
		}
	}
}

func TestClassifyThrottling(t *testing.T) {
	cls := Classify(&Response{
		OK:          false,
		Description: "Too Many Requests: retry after 3",
		Parameters:  &ResponseParameters{RetryAfter: 3},
	})
	if !cls.Retry {
		t.Fatal("expected retry classification")
	}
	if cls.RetryAfter != 3 {
		t.Errorf("expected retry after 3s, got %d", cls.RetryAfter)
	}
	if cls.Outcome != "" {
		t.Errorf("throttling must not carry a terminal outcome, got %s", cls.Outcome)
	}
}

func TestClassifyThrottlingDefaultDelay(t *testing.T) {
	cls := Classify(&Response{OK: false, Description: "Too Many Requests: retry after 1"})
	if !cls.Retry || cls.RetryAfter != 1 {
		t.Errorf("expected retry with default 1s delay, got %+v", cls)
	}
}
