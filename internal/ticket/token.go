package ticket

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// KindTicketVerification tags a token as a ticket-verification payload.
// The value is part of the wire format shared with the web client and
// must not change.
const KindTicketVerification = "TICKET_VERIFICATION"

// ErrMalformedToken is returned (wrapped) for any input that cannot be
// decoded into a Token.
var ErrMalformedToken = errors.New("malformed ticket token")

// Token is the self-contained verification payload embedded in a
// ticket's QR code. It carries no secret: authenticity comes from
// cross-referencing TicketID and EventID against the stored record.
type Token struct {
	TicketID    string
	EventID     string
	HolderEmail string
	IssuedAt    int64 // epoch milliseconds
	Kind        string
}

func (t Token) IssuedAtTime() time.Time {
	return time.UnixMilli(t.IssuedAt)
}

// Short-key wire form. Keys are kept short because the encoded token
// has to fit a QR code and an email template.
type tokenWire struct {
	TicketID    string `json:"tn"`
	EventID     string `json:"ev"`
	HolderEmail string `json:"em"`
	IssuedAt    int64  `json:"ts"`
	Kind        string `json:"k"`
}

// Legacy long-key wire form emitted by the original web client.
// Decode still accepts it; Encode never produces it.
type tokenWireLegacy struct {
	TicketNumber string `json:"ticketNumber"`
	EventID      string `json:"eventId"`
	UserEmail    string `json:"userEmail"`
	Timestamp    int64  `json:"timestamp"`
	Type         string `json:"type"`
}

// Encode serializes the token with short field keys and applies
// URL-safe base64, so the result is safe in QR payloads, URLs and
// copy-pasted text.
func Encode(t Token) string {
	w := tokenWire{
		TicketID:    t.TicketID,
		EventID:     t.EventID,
		HolderEmail: t.HolderEmail,
		IssuedAt:    t.IssuedAt,
		Kind:        t.Kind,
	}

	data, err := json.Marshal(w)
	if err != nil {
		// Marshalling a struct of strings and an int64 cannot fail.
		panic(fmt.Sprintf("ticket: encode token: %v", err))
	}

	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode is the inverse of Encode. It tolerates both base64 alphabets
// with or without padding, and normalizes the short-key and legacy
// long-key shapes into the same Token. Any malformed input resolves to
// a wrapped ErrMalformedToken, never a panic.
func Decode(s string) (Token, error) {
	if s == "" {
		return Token{}, fmt.Errorf("%w: empty input", ErrMalformedToken)
	}

	raw, err := decodeBase64(s)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var w tokenWire
	if err := json.Unmarshal(raw, &w); err == nil && w.TicketID != "" {
		return Token{
			TicketID:    w.TicketID,
			EventID:     w.EventID,
			HolderEmail: w.HolderEmail,
			IssuedAt:    w.IssuedAt,
			Kind:        w.Kind,
		}, nil
	}

	var lw tokenWireLegacy
	if err := json.Unmarshal(raw, &lw); err == nil && lw.TicketNumber != "" {
		return Token{
			TicketID:    lw.TicketNumber,
			EventID:     lw.EventID,
			HolderEmail: lw.UserEmail,
			IssuedAt:    lw.Timestamp,
			Kind:        lw.Type,
		}, nil
	}

	return Token{}, fmt.Errorf("%w: unrecognized payload", ErrMalformedToken)
}

// decodeBase64 accepts the URL-safe alphabet Encode produces as well
// as the standard alphabet the legacy web client's btoa emitted.
// Padding is optional either way; manual transcription tends to drop
// trailing '=' characters.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if strings.ContainsAny(s, "+/") {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.RawURLEncoding.DecodeString(s)
}
