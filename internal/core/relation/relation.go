// Package relation builds the store filter formulas that join a client to
// its contracts, videos and team members.
//
// Joins match the client's company name as free text inside linked-record
// fields. Nothing guarantees referential integrity: two clients whose names
// contain one another will see each other's records.
package relation

import (
	"fmt"
	"strings"
)

// TeamRoleTag selects the members who talk to clients.
const TeamRoleTag = "Communication Clients"

// VideoStrategy picks the linked field used to find a client's videos.
type VideoStrategy string

const (
	// VideoViaLinkedClient matches the "Lien client vidéo" lookup array.
	VideoViaLinkedClient VideoStrategy = "linked_client"
	// VideoViaShootSession matches the client rolled up through shoot sessions.
	VideoViaShootSession VideoStrategy = "shoot_session"
)

// TeamScope picks how team members are selected.
type TeamScope string

const (
	// TeamByRole lists every member carrying TeamRoleTag, regardless of client.
	TeamByRole TeamScope = "role"
	// TeamByClient lists members linked to the client.
	TeamByClient TeamScope = "client"
)

// Policy bundles the resolution choices of one call site.
type Policy struct {
	Videos VideoStrategy
	Team   TeamScope
}

func ParseVideoStrategy(raw string) (VideoStrategy, error) {
	switch VideoStrategy(strings.ToLower(strings.TrimSpace(raw))) {
	case VideoViaLinkedClient:
		return VideoViaLinkedClient, nil
	case VideoViaShootSession:
		return VideoViaShootSession, nil
	default:
		return "", fmt.Errorf("unknown video resolution %q", raw)
	}
}

func ParseTeamScope(raw string) (TeamScope, error) {
	switch TeamScope(strings.ToLower(strings.TrimSpace(raw))) {
	case TeamByRole:
		return TeamByRole, nil
	case TeamByClient:
		return TeamByClient, nil
	default:
		return "", fmt.Errorf("unknown team scope %q", raw)
	}
}

// EscapeFormulaString escapes single quotes so s can sit inside a
// single-quoted formula literal.
func EscapeFormulaString(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func ClientByID(id string) string {
	return fmt.Sprintf("RECORD_ID()='%s'", EscapeFormulaString(id))
}

func ClientByEmail(email string) string {
	return fmt.Sprintf("{Email contact principal}='%s'", EscapeFormulaString(email))
}

func Contracts(companyName string) string {
	return fmt.Sprintf("FIND('%s', {Clients}) > 0", EscapeFormulaString(companyName))
}

func Videos(companyName string, strategy VideoStrategy) string {
	safe := EscapeFormulaString(companyName)
	if strategy == VideoViaShootSession {
		return fmt.Sprintf("FIND('%s', {Client (from Sessions de tournage)}) > 0", safe)
	}
	return fmt.Sprintf("FIND('%s', ARRAYJOIN({Lien client vidéo})) > 0", safe)
}

func Team(companyName string, scope TeamScope) string {
	if scope == TeamByClient {
		return fmt.Sprintf("FIND('%s', ARRAYJOIN({Clients liés})) > 0", EscapeFormulaString(companyName))
	}
	return fmt.Sprintf("FIND('%s', {Rôles}) > 0", TeamRoleTag)
}
