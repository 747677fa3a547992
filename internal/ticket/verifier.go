package ticket

import "time"

// ValidityWindow bounds how old a token's issuance timestamp may be
// before a scan rejects it.
const ValidityWindow = 24 * time.Hour

type Outcome string

const (
	OutcomeValid         Outcome = "VALID"
	OutcomeInvalidFormat Outcome = "INVALID_FORMAT"
	OutcomeWrongEvent    Outcome = "WRONG_EVENT"
	OutcomeExpired       Outcome = "EXPIRED"
)

// Result classifies a scanned token. Token is set whenever decoding
// succeeded, including for WRONG_EVENT and EXPIRED rejections.
type Result struct {
	Outcome Outcome
	Token   *Token
}

func (r Result) Valid() bool {
	return r.Outcome == OutcomeValid
}

// Verify performs every check that can be decided without the store:
// format validity, event binding and freshness. It is a pure function
// of its inputs; now is explicit so expiry is testable.
func Verify(encoded, expectedEventID string, now time.Time) Result {
	tok, err := Decode(encoded)
	if err != nil {
		return Result{Outcome: OutcomeInvalidFormat}
	}

	if tok.Kind != KindTicketVerification {
		return Result{Outcome: OutcomeInvalidFormat, Token: &tok}
	}

	if tok.EventID != expectedEventID {
		return Result{Outcome: OutcomeWrongEvent, Token: &tok}
	}

	if now.Sub(tok.IssuedAtTime()) > ValidityWindow {
		return Result{Outcome: OutcomeExpired, Token: &tok}
	}

	return Result{Outcome: OutcomeValid, Token: &tok}
}
