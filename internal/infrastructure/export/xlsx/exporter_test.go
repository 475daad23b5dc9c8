package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verticalview/client-portal/internal/core/domain"
)

func TestExportWritesOneSheetPerEntity(t *testing.T) {
	dashboard := &domain.Dashboard{
		Client: domain.Client{ID: "recC1", CompanyName: "O'Brien & Co", Email: "ops@obrien.example"},
		Contracts: []domain.Contract{
			{Name: "Pack 12", Type: "Contrat Cadre", Status: "En cours", TotalVideos: 12, DeliveredVideos: 4},
		},
		Videos: []domain.Video{
			{Title: "Trailer Cut", Status: domain.StageClientReview.Literal(), Stage: domain.StageClientReview, Deadline: "2026-10-30"},
			{Title: "Teaser", Status: domain.StageDelivered.Literal(), Stage: domain.StageDelivered},
		},
		Team:      []domain.TeamMember{{Name: "Léa Martin", Roles: []string{"Communication Clients", "Montage"}}},
		FetchedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := NewExporter().Export(&buf, dashboard); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetClient, SheetVideos, SheetContracts, SheetTeam}
	if len(sheets) != len(want) {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("sheet %d = %q, want %q", i, sheets[i], want[i])
		}
	}

	rows, err := f.GetRows(SheetVideos)
	if err != nil {
		t.Fatalf("read videos: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 videos, got %d rows", len(rows))
	}
	if rows[1][0] != "Trailer Cut" || rows[1][2] != "Review Client" || rows[1][3] != "À valider" {
		t.Fatalf("unexpected review row %v", rows[1])
	}

	client, err := f.GetCellValue(SheetClient, "B1")
	if err != nil || client != "O'Brien & Co" {
		t.Fatalf("unexpected company cell %q, %v", client, err)
	}
	pending, err := f.GetCellValue(SheetClient, "B5")
	if err != nil || pending != "1" {
		t.Fatalf("unexpected pending count %q, %v", pending, err)
	}

	team, err := f.GetRows(SheetTeam)
	if err != nil || team[1][1] != "Communication Clients, Montage" {
		t.Fatalf("unexpected team rows %v, %v", team, err)
	}
}
