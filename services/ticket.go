package services

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

const (
	ticketPrefix  = "GENESIS"
	ticketVersion = "1.0"
)

// ticketCodeRe matches PREFIX:VERSION:UUID with a v4 UUID. Scans that do not
// match are rejected before any storage lookup.
var ticketCodeRe = regexp.MustCompile(`^GENESIS:(\d+\.\d+):([0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12})$`)

// GenerateTicketCode returns a fresh ticket token. The token is the only
// credential presented at the door and carries no participant identity.
func GenerateTicketCode() string {
	return fmt.Sprintf("%s:%s:%s", ticketPrefix, ticketVersion, uuid.NewString())
}

// ParseTicketCode validates the shape of a scanned code and returns its
// version and token parts.
func ParseTicketCode(code string) (version, token string, err error) {
	m := ticketCodeRe.FindStringSubmatch(code)
	if m == nil {
		return "", "", fmt.Errorf("malformed ticket code")
	}
	return m[1], m[2], nil
}
