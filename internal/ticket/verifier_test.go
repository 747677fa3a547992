package ticket

import (
	"testing"
	"time"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt.Add(time.Hour)

	valid := Token{
		TicketID:    "TKT-ABC-12345",
		EventID:     "evt-1",
		HolderEmail: "a@x.com",
		IssuedAt:    issuedAt.UnixMilli(),
		Kind:        KindTicketVerification,
	}

	wrongKind := valid
	wrongKind.Kind = "SOMETHING_ELSE"

	cases := []struct {
		name    string
		encoded string
		eventID string
		now     time.Time
		want    Outcome
	}{
		{"valid", Encode(valid), "evt-1", now, OutcomeValid},
		{"garbage input", "not-a-token", "evt-1", now, OutcomeInvalidFormat},
		{"kind mismatch", Encode(wrongKind), "evt-1", now, OutcomeInvalidFormat},
		{"wrong event", Encode(valid), "evt-2", now, OutcomeWrongEvent},
		{"expired", Encode(valid), "evt-1", issuedAt.Add(25 * time.Hour), OutcomeExpired},
		{"exactly at window", Encode(valid), "evt-1", issuedAt.Add(ValidityWindow), OutcomeValid},
		{"1ms past window", Encode(valid), "evt-1", issuedAt.Add(ValidityWindow + time.Millisecond), OutcomeExpired},
		{"1ms inside window", Encode(valid), "evt-1", issuedAt.Add(ValidityWindow - time.Millisecond), OutcomeValid},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := Verify(tc.encoded, tc.eventID, tc.now)
			if res.Outcome != tc.want {
				t.Errorf("Verify() outcome = %s, want %s", res.Outcome, tc.want)
			}
			if tc.want == OutcomeValid && res.Token == nil {
				t.Error("valid result missing decoded token")
			}
		})
	}
}

// Wrong-event and expiry precedence: event binding is checked before
// freshness, so a stale token for another event reports WRONG_EVENT.
func TestVerifyWrongEventBeforeExpiry(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tok := Token{
		TicketID:    "TKT-ABC-12345",
		EventID:     "evt-1",
		HolderEmail: "a@x.com",
		IssuedAt:    issuedAt.UnixMilli(),
		Kind:        KindTicketVerification,
	}

	res := Verify(Encode(tok), "evt-2", issuedAt.Add(48*time.Hour))
	if res.Outcome != OutcomeWrongEvent {
		t.Errorf("outcome = %s, want WRONG_EVENT", res.Outcome)
	}
}

func TestVerifyIsPure(t *testing.T) {
	t.Parallel()

	tok := Token{
		TicketID:    "TKT-ABC-12345",
		EventID:     "evt-1",
		HolderEmail: "a@x.com",
		IssuedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Kind:        KindTicketVerification,
	}
	encoded := Encode(tok)
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	first := Verify(encoded, "evt-1", now)
	for i := 0; i < 10; i++ {
		again := Verify(encoded, "evt-1", now)
		if again.Outcome != first.Outcome {
			t.Fatalf("outcome changed between identical calls: %s vs %s", again.Outcome, first.Outcome)
		}
		if *again.Token != *first.Token {
			t.Fatalf("token changed between identical calls")
		}
	}
}

// End-to-end: issue, encode, decode, verify against the right event,
// the wrong event, and past the validity window.
func TestIssueVerifyScenario(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuerWithClock("TKT", func() time.Time { return issuedAt })

	issued, err := issuer.Issue("E1", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(issued.Encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != issued.Token {
		t.Fatalf("decode mismatch: got %+v, want %+v", decoded, issued.Token)
	}

	if res := Verify(issued.Encoded, "E1", issuedAt.Add(time.Hour)); res.Outcome != OutcomeValid {
		t.Errorf("verify E1 at +1h: %s, want VALID", res.Outcome)
	}
	if res := Verify(issued.Encoded, "E2", issuedAt.Add(time.Hour)); res.Outcome != OutcomeWrongEvent {
		t.Errorf("verify E2: %s, want WRONG_EVENT", res.Outcome)
	}
	if res := Verify(issued.Encoded, "E1", issuedAt.Add(25*time.Hour)); res.Outcome != OutcomeExpired {
		t.Errorf("verify E1 at +25h: %s, want EXPIRED", res.Outcome)
	}
}
