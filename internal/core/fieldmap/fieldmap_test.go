package fieldmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verticalview/client-portal/internal/core/domain"
)

func TestClientDefaults(t *testing.T) {
	got := Client(domain.Record{ID: "rec1", Fields: domain.Fields{}})
	want := domain.Client{
		ID:          "rec1",
		CompanyName: DefaultCompanyName,
		Status:      DefaultClientStatus,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Client() mismatch (-want +got):\n%s", diff)
	}
}

func TestClientReadsAttachmentAndFields(t *testing.T) {
	got := Client(domain.Record{ID: "rec1", Fields: domain.Fields{
		"Nom du client":           "O'Brien & Co",
		"Logo":                    []any{map[string]any{"url": "https://cdn/logo.png", "filename": "logo.png"}},
		"Email contact principal": "ops@obrien.example",
		"Statut":                  "Prospect",
		"Type de client":          "PME",
		"Drive Tournage":          "https://drive/x",
	}})
	want := domain.Client{
		ID:            "rec1",
		CompanyName:   "O'Brien & Co",
		LogoURL:       "https://cdn/logo.png",
		Email:         "ops@obrien.example",
		Status:        "Prospect",
		Type:          "PME",
		DriveTournage: "https://drive/x",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Client() mismatch (-want +got):\n%s", diff)
	}
}

func TestContractStatusFallbackAndFileName(t *testing.T) {
	got := Contract(domain.Record{ID: "con1", Fields: domain.Fields{
		"Nom du contrat":  "Pack 12",
		"Statut contrat":  "En cours",
		"Vidéos prévues":  float64(12),
		"Vidéos livrées":  "4",
		"Contrat":         []any{map[string]any{"url": "https://cdn/c.pdf"}},

		"Progression accomplissement du contrat %": 0.33,
	}})
	want := domain.Contract{
		ID:                 "con1",
		Name:               "Pack 12",
		Type:               DefaultContractType,
		Status:             "En cours",
		TotalVideos:        12,
		DeliveredVideos:    4,
		ProgressionPercent: 0.33,
		ContractFileURL:    "https://cdn/c.pdf",
		ContractFileName:   DefaultContractFile,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Contract() mismatch (-want +got):\n%s", diff)
	}
	if !got.IsActive() {
		t.Fatalf("expected active contract")
	}
}

func TestVideoTriesAlternateSpellingsInOrder(t *testing.T) {
	got := Video(domain.Record{ID: "vid1", Fields: domain.Fields{
		"Titre vidéo":       "Trailer Cut",
		"Statut production": "📨 4. Review Client",
		"Lien vidéo":        "https://youtu.be/second",
		"Lien Video":        "https://youtu.be/third",
		"Lien drive":        "https://drive/lower",
		"Lien Rush":         "https://rush/last",
		"Lien rushes":       "",
		"Lien Drive Session (from Sessions de tournage)": []any{"https://drive/session"},
		"% Avancement": 0.8,
	}})
	if got.VideoURL != "https://youtu.be/second" {
		t.Fatalf("expected second candidate for video url, got %q", got.VideoURL)
	}
	if got.DriveURL != "https://drive/lower" {
		t.Fatalf("unexpected drive url %q", got.DriveURL)
	}
	if got.RushURL != "https://rush/last" {
		t.Fatalf("empty first candidate must be skipped, got %q", got.RushURL)
	}
	if got.DriveSessionURL != "https://drive/session" {
		t.Fatalf("unexpected session url %q", got.DriveSessionURL)
	}
	if got.Stage != domain.StageClientReview {
		t.Fatalf("expected client review stage, got %s", got.Stage)
	}
	if got.Progress != 0.8 {
		t.Fatalf("unexpected progress %v", got.Progress)
	}

	withPrimary := Video(domain.Record{ID: "vid2", Fields: domain.Fields{
		"Lien Vidéo": "https://youtu.be/first",
		"Lien vidéo": "https://youtu.be/second",
	}})
	if withPrimary.VideoURL != "https://youtu.be/first" {
		t.Fatalf("expected first candidate to win, got %q", withPrimary.VideoURL)
	}
}

func TestVideoDefaultsToBriefWhenStatusMissing(t *testing.T) {
	got := Video(domain.Record{ID: "vid1", Fields: domain.Fields{}})
	if got.Title != DefaultVideoTitle {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Status != domain.StageBrief.Literal() || got.Stage != domain.StageBrief {
		t.Fatalf("expected brief default, got %q / %s", got.Status, got.Stage)
	}
}

func TestVideoKeepsUnrecognizedStatusVisible(t *testing.T) {
	got := Video(domain.Record{ID: "vid1", Fields: domain.Fields{"Statut production": "⏸ En pause"}})
	if got.Stage != domain.StageUnknown {
		t.Fatalf("expected unknown stage, got %s", got.Stage)
	}
	if got.Status != "⏸ En pause" {
		t.Fatalf("raw status must be preserved, got %q", got.Status)
	}
}

func TestTeamMemberRolesNeverNil(t *testing.T) {
	got := TeamMember(domain.Record{ID: "tm1", Fields: domain.Fields{}})
	if got.Roles == nil || len(got.Roles) != 0 {
		t.Fatalf("expected empty non-nil roles, got %#v", got.Roles)
	}
	if got.Name != DefaultMemberName {
		t.Fatalf("unexpected name %q", got.Name)
	}

	withRoles := TeamMember(domain.Record{ID: "tm2", Fields: domain.Fields{
		"Nom complet": "Léa Martin",
		"Rôles":       []any{"Communication Clients", "Montage"},
		"Photo":       []any{map[string]any{"url": "https://cdn/lea.jpg"}},
	}})
	if diff := cmp.Diff([]string{"Communication Clients", "Montage"}, withRoles.Roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
	if withRoles.PhotoURL != "https://cdn/lea.jpg" {
		t.Fatalf("unexpected photo %q", withRoles.PhotoURL)
	}
}

func TestFeedbackFields(t *testing.T) {
	got := FeedbackFields(domain.Feedback{VideoID: "vid1", Title: "Feedback - X", Comment: "c", Type: domain.RevisionFeedbackType})
	want := domain.Fields{
		"Vidéo":       []string{"vid1"},
		"Titre":       "Feedback - X",
		"Commentaire": "c",
		"Type":        domain.RevisionFeedbackType,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FeedbackFields() mismatch (-want +got):\n%s", diff)
	}
}
