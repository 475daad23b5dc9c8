package usecase

import (
	"context"
	"testing"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/relation"
)

func seededStore() *recordStoreFake {
	store := newRecordStoreFake()
	store.lists["Clients"] = []domain.Record{{ID: "recC1", Fields: domain.Fields{
		"Nom du client":           "O'Brien & Co",
		"Email contact principal": "ops@obrien.example",
	}}}
	store.lists["Contrats"] = []domain.Record{{ID: "recK1", Fields: domain.Fields{
		"Nom du contrat": "Pack 12",
		"Statut contrat": "En cours",
	}}}
	store.lists["Vidéos"] = []domain.Record{
		reviewVideo("recV1", "Trailer Cut", domain.StageClientReview),
		{ID: "recV2", Fields: domain.Fields{"Titre vidéo": "Teaser", "Statut production": "⏸ En pause"}},
	}
	store.lists["Équipe"] = []domain.Record{{ID: "recT1", Fields: domain.Fields{"Nom complet": "Léa Martin"}}}
	return store
}

func TestLoadByIDResolvesRelationsWithEscapedName(t *testing.T) {
	store := seededStore()
	observer := &observerFake{}
	uc := NewDashboardUseCase(store, testTables, relation.Policy{
		Videos: relation.VideoViaLinkedClient,
		Team:   relation.TeamByRole,
	}, observer, discardLogger())

	dashboard, err := uc.LoadByID(context.Background(), "recC1")
	if err != nil {
		t.Fatalf("LoadByID() error = %v", err)
	}
	if dashboard.Client.CompanyName != "O'Brien & Co" {
		t.Fatalf("unexpected client %+v", dashboard.Client)
	}
	if len(dashboard.Contracts) != 1 || len(dashboard.Videos) != 2 || len(dashboard.Team) != 1 {
		t.Fatalf("unexpected dashboard sizes %d/%d/%d", len(dashboard.Contracts), len(dashboard.Videos), len(dashboard.Team))
	}

	lists := store.callsOf("list")
	want := []string{
		"RECORD_ID()='recC1'",
		`FIND('O\'Brien & Co', {Clients}) > 0`,
		`FIND('O\'Brien & Co', ARRAYJOIN({Lien client vidéo})) > 0`,
		"FIND('Communication Clients', {Rôles}) > 0",
	}
	if len(lists) != len(want) {
		t.Fatalf("expected %d list calls, got %d", len(want), len(lists))
	}
	for i, c := range lists {
		if c.filter != want[i] {
			t.Fatalf("list %d filter = %q, want %q", i, c.filter, want[i])
		}
	}

	if observer.unknown != 1 {
		t.Fatalf("expected one unrecognized status, got %d", observer.unknown)
	}
	if dashboard.Videos[1].Stage != domain.StageUnknown || dashboard.Videos[1].Status != "⏸ En pause" {
		t.Fatalf("unknown status must stay visible, got %+v", dashboard.Videos[1])
	}
	if len(observer.loads) != 1 || observer.loads[0] != "success" {
		t.Fatalf("unexpected load observations %v", observer.loads)
	}
}

func TestLoadByIDUnknownClient(t *testing.T) {
	store := newRecordStoreFake()
	uc := NewDashboardUseCase(store, testTables, relation.Policy{}, nil, discardLogger())

	_, err := uc.LoadByID(context.Background(), "recNope")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if lists := store.callsOf("list"); len(lists) != 1 {
		t.Fatalf("expected a single client lookup, got %d", len(lists))
	}
}

func TestLoadByEmailUsesEmailFormula(t *testing.T) {
	store := seededStore()
	uc := NewDashboardUseCase(store, testTables, relation.Policy{
		Videos: relation.VideoViaShootSession,
		Team:   relation.TeamByClient,
	}, nil, discardLogger())

	if _, err := uc.LoadByEmail(context.Background(), "ops@obrien.example"); err != nil {
		t.Fatalf("LoadByEmail() error = %v", err)
	}
	lists := store.callsOf("list")
	if lists[0].filter != "{Email contact principal}='ops@obrien.example'" {
		t.Fatalf("unexpected client filter %q", lists[0].filter)
	}
	if lists[2].filter != `FIND('O\'Brien & Co', {Client (from Sessions de tournage)}) > 0` {
		t.Fatalf("unexpected video filter %q", lists[2].filter)
	}
	if lists[3].filter != `FIND('O\'Brien & Co', ARRAYJOIN({Clients liés})) > 0` {
		t.Fatalf("unexpected team filter %q", lists[3].filter)
	}
}

func TestLoadRejectsBlankReference(t *testing.T) {
	store := newRecordStoreFake()
	uc := NewDashboardUseCase(store, testTables, relation.Policy{}, nil, discardLogger())

	if _, err := uc.LoadByID(context.Background(), " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no store calls")
	}
}
