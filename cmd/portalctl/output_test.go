package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verticalview/client-portal/internal/core/domain"
)

func sampleDashboard() *domain.Dashboard {
	return &domain.Dashboard{
		Client: domain.Client{ID: "recC1", CompanyName: "Acme Films"},
		Contracts: []domain.Contract{{
			Name: "Pack 2026", Status: domain.ContractActiveStatus,
			TotalVideos: 4, DeliveredVideos: 1, ProgressionPercent: 25,
			StartDate: "2026-01-01", EndDate: "2026-12-31",
		}},
		Videos: []domain.Video{
			{ID: "recV1", Title: "Trailer", Status: "📨 4. Review Client", Stage: domain.StageClientReview, Deadline: "2026-10-30", VideoURL: "https://youtu.be/abc123"},
			{ID: "recV2", Title: "Teaser", Status: "✂️ 3. Post-production", Stage: domain.StagePostProduction, Progress: 40},
			{ID: "recV3", Title: "Old spot", Status: "📦 7. Livrée", Stage: domain.StageDelivered, Deadline: "2026-10-10"},
			{ID: "recV4", Title: "Ancient", Status: "📦 7. Livrée", Stage: domain.StageDelivered, Deadline: "2025-01-10"},
		},
		Team: []domain.TeamMember{{Name: "Ada Lovelace", Roles: []string{"Chef de projet"}, WhatsApp: "+33 6 00"}},
	}
}

func TestNewDashboardOutputSplitsOngoingAndHistory(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	out := newDashboardOutput(sampleDashboard(), now)

	if out.PendingReviews != 1 {
		t.Fatalf("pending reviews = %d, want 1", out.PendingReviews)
	}
	var ongoing []string
	for _, r := range out.Ongoing {
		ongoing = append(ongoing, r.ID)
	}
	if diff := cmp.Diff([]string{"recV1", "recV2"}, ongoing); diff != "" {
		t.Fatalf("ongoing order mismatch (-want +got):\n%s", diff)
	}
	if len(out.History) != 1 || out.History[0].ID != "recV3" {
		t.Fatalf("history = %+v, want only recV3", out.History)
	}

	review := out.Ongoing[0]
	if !review.NeedsAction || review.Tracker != "Review 5/7" || review.Status != "Review Client" {
		t.Fatalf("unexpected review row: %+v", review)
	}
	if review.Preview == "" {
		t.Fatalf("expected an embed url for the youtube link")
	}
	if out.Ongoing[1].Progress != "40%" {
		t.Fatalf("progress = %q, want 40%%", out.Ongoing[1].Progress)
	}

	wantContract := contractRow{Name: "Pack 2026", Status: "En cours", Videos: "1/4", Progress: "25%", Period: "2026-01-01 → 2026-12-31"}
	if diff := cmp.Diff([]contractRow{wantContract}, out.Contracts); diff != "" {
		t.Fatalf("contracts mismatch (-want +got):\n%s", diff)
	}
	if out.Team[0].WhatsApp != "https://wa.me/33600" {
		t.Fatalf("whatsapp = %q", out.Team[0].WhatsApp)
	}
}

func TestRenderDashboardPlainText(t *testing.T) {
	out := newDashboardOutput(sampleDashboard(), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	if err := renderDashboard(&buf, out, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	text := buf.String()
	for _, want := range []string{
		"== Acme Films ==",
		"1 video(s) awaiting your review",
		"Review Client (to validate)",
		"== Delivered ==",
		"Pack 2026",
		"Ada Lovelace",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("expected no ANSI codes without colorize:\n%s", text)
	}
	if strings.Contains(text, "Ancient") {
		t.Fatalf("expected stale delivery to be hidden:\n%s", text)
	}
}

func TestRenderDashboardWithoutVideos(t *testing.T) {
	out := newDashboardOutput(&domain.Dashboard{Client: domain.Client{ID: "recC2", CompanyName: "Empty"}}, time.Now())

	var buf bytes.Buffer
	if err := renderDashboard(&buf, out, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Nothing awaiting your review") || !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteOutputEncodesStructuredFormats(t *testing.T) {
	out := newDashboardOutput(sampleDashboard(), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := writeOutput(cmd, outputJSON, out, nil); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v\n%s", err, buf.String())
	}
	if decoded["clientId"] != "recC1" || decoded["pendingReviews"] != float64(1) {
		t.Fatalf("unexpected json: %v", decoded)
	}

	buf.Reset()
	if err := writeOutput(cmd, outputYAML, out, nil); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, buf.String())
	}
	if fromYAML["company"] != "Acme Films" || fromYAML["pending_reviews"] != 1 {
		t.Fatalf("unexpected yaml: %v", fromYAML)
	}
}

func TestFormatEventIncludesComment(t *testing.T) {
	line := formatEvent(domain.ReviewEvent{
		Action:     domain.ReviewRevisionRequested,
		VideoID:    "recV1",
		VideoTitle: "Trailer",
		Comment:    "Shorten intro",
		OccurredAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local),
	})
	for _, want := range []string{"2026-10-19 09:30:00", "Trailer (recV1)", `"Shorten intro"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
