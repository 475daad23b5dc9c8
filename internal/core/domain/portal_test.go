package domain

import (
	"testing"
	"time"
)

func TestOngoingSortsByPriorityAndDropsClosed(t *testing.T) {
	d := &Dashboard{Videos: []Video{
		{ID: "v1", Stage: StagePostProduction},
		{ID: "v2", Stage: StageDelivered},
		{ID: "v3", Stage: StageClientReview},
		{ID: "v4", Stage: StageUnknown},
		{ID: "v5", Stage: StageBrief},
		{ID: "v6", Stage: StageArchived},
	}}

	got := d.Ongoing()
	want := []string{"v3", "v5", "v1", "v4"}
	if len(got) != len(want) {
		t.Fatalf("expected %d ongoing videos, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestHistoryKeepsRecentClosedVideos(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	d := &Dashboard{Videos: []Video{
		{ID: "old", Stage: StageDelivered, Deadline: "2026-08-01"},
		{ID: "recent", Stage: StageDelivered, Deadline: "2026-10-01"},
		{ID: "newest", Stage: StageArchived, Deadline: "2026-10-15"},
		{ID: "undated", Stage: StageDelivered},
		{ID: "ongoing", Stage: StageBrief, Deadline: "2026-10-18"},
	}}

	got := d.History(now)
	want := []string{"newest", "recent", "undated"}
	if len(got) != len(want) {
		t.Fatalf("expected %d history videos, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestEmbedURL(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=abc123&t=4": "https://www.youtube.com/embed/abc123",
		"https://youtu.be/xyz":                       "https://www.youtube.com/embed/xyz",
		"https://vimeo.com/76979871":                 "https://player.vimeo.com/video/76979871",
		"https://drive.google.com/file/d/FILE/view":  "https://drive.google.com/file/d/FILE/preview",
		"https://drive.google.com/open?id=FILE2":     "https://drive.google.com/file/d/FILE2/preview",
		"https://cdn.example.com/cut.MP4":            "https://cdn.example.com/cut.MP4",
		"https://example.com/page":                   "",
		"":                                           "",
	}
	for in, want := range cases {
		if got := EmbedURL(in); got != want {
			t.Fatalf("EmbedURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTeamMemberHelpers(t *testing.T) {
	m := TeamMember{Name: "jeanne marie dupont", WhatsApp: "+33 6 12-34"}
	if got := m.Initials(); got != "JM" {
		t.Fatalf("unexpected initials %q", got)
	}
	if got := m.WhatsAppLink(); got != "https://wa.me/3361234" {
		t.Fatalf("unexpected whatsapp link %q", got)
	}
	if (TeamMember{}).WhatsAppLink() != "" {
		t.Fatalf("expected empty link without digits")
	}
}
