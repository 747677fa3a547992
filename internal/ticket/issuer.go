package ticket

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultIDPrefix = "TKT"

	// Length of the random base36 suffix appended to ticket IDs.
	idSuffixLen = 5
)

var (
	ErrEmptyEventID     = errors.New("event id is required")
	ErrEmptyHolderEmail = errors.New("holder email is required")
)

// Issued is the result of a single issuance: the allocated ticket ID,
// the structured token and its transportable encoding.
type Issued struct {
	TicketID string
	Token    Token
	Encoded  string
}

// Issuer allocates ticket IDs and builds verification tokens for new
// registrations. It performs no I/O.
type Issuer struct {
	prefix string
	now    func() time.Time
}

func NewIssuer(prefix string) *Issuer {
	return NewIssuerWithClock(prefix, time.Now)
}

// NewIssuerWithClock is used by tests that need deterministic
// issuance timestamps.
func NewIssuerWithClock(prefix string, now func() time.Time) *Issuer {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return &Issuer{
		prefix: prefix,
		now:    now,
	}
}

// Issue builds a fresh token for the given event and registrant. The
// ticket ID combines a time-based component with a random one, so two
// tickets issued in the same millisecond remain distinguishable.
func (i *Issuer) Issue(eventID, holderEmail string) (Issued, error) {
	if strings.TrimSpace(eventID) == "" {
		return Issued{}, ErrEmptyEventID
	}
	if strings.TrimSpace(holderEmail) == "" {
		return Issued{}, ErrEmptyHolderEmail
	}

	now := i.now()
	id := i.newTicketID(now)

	tok := Token{
		TicketID:    id,
		EventID:     eventID,
		HolderEmail: holderEmail,
		IssuedAt:    now.UnixMilli(),
		Kind:        KindTicketVerification,
	}

	return Issued{
		TicketID: id,
		Token:    tok,
		Encoded:  Encode(tok),
	}, nil
}

func (i *Issuer) newTicketID(now time.Time) string {
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", i.prefix, stamp, randomSuffix()))
}

func randomSuffix() string {
	// uuid.New draws from crypto/rand.
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])

	s := strconv.FormatUint(n, 36)
	if len(s) < idSuffixLen {
		s = strings.Repeat("0", idSuffixLen-len(s)) + s
	}
	return s[:idSuffixLen]
}
