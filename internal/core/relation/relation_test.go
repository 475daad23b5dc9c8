package relation

import (
	"strings"
	"testing"
)

func TestEscapeFormulaStringGrowsByQuoteCount(t *testing.T) {
	for _, name := range []string{"Acme", "O'Brien & Co", "'''", "l'Atelier d'Ann", ""} {
		escaped := EscapeFormulaString(name)
		quotes := strings.Count(name, "'")
		if len(escaped)-len(name) != quotes {
			t.Fatalf("escape(%q) grew by %d, want %d", name, len(escaped)-len(name), quotes)
		}
		if strings.Count(escaped, `\'`) != quotes {
			t.Fatalf("escape(%q) = %q, expected every quote escaped", name, escaped)
		}
	}
}

func TestContractsFormulaEscapesCompanyName(t *testing.T) {
	got := Contracts("O'Brien & Co")
	want := `FIND('O\'Brien & Co', {Clients}) > 0`
	if got != want {
		t.Fatalf("Contracts() = %q, want %q", got, want)
	}
}

func TestVideoStrategies(t *testing.T) {
	if got := Videos("Acme", VideoViaLinkedClient); got != "FIND('Acme', ARRAYJOIN({Lien client vidéo})) > 0" {
		t.Fatalf("unexpected linked-client formula %q", got)
	}
	if got := Videos("Acme", VideoViaShootSession); got != "FIND('Acme', {Client (from Sessions de tournage)}) > 0" {
		t.Fatalf("unexpected shoot-session formula %q", got)
	}
}

func TestTeamScopes(t *testing.T) {
	if got := Team("O'Brien", TeamByRole); got != "FIND('Communication Clients', {Rôles}) > 0" {
		t.Fatalf("role scope must not depend on the client, got %q", got)
	}
	if got := Team("O'Brien", TeamByClient); got != `FIND('O\'Brien', ARRAYJOIN({Clients liés})) > 0` {
		t.Fatalf("unexpected client-scoped formula %q", got)
	}
}

func TestClientLookups(t *testing.T) {
	if got := ClientByID("recABC"); got != "RECORD_ID()='recABC'" {
		t.Fatalf("unexpected id formula %q", got)
	}
	if got := ClientByEmail("o'neil@example.com"); got != `{Email contact principal}='o\'neil@example.com'` {
		t.Fatalf("unexpected email formula %q", got)
	}
}

func TestParsePolicyValues(t *testing.T) {
	if s, err := ParseVideoStrategy(" Shoot_Session "); err != nil || s != VideoViaShootSession {
		t.Fatalf("ParseVideoStrategy() = %q, %v", s, err)
	}
	if _, err := ParseVideoStrategy("sessions"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if s, err := ParseTeamScope("client"); err != nil || s != TeamByClient {
		t.Fatalf("ParseTeamScope() = %q, %v", s, err)
	}
	if _, err := ParseTeamScope(""); err == nil {
		t.Fatalf("expected error for empty scope")
	}
}
