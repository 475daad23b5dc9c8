package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verticalview/client-portal/internal/core/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

const (
	ansiReset  = "\x1b[0m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiBlue   = "\x1b[34m"
)

type videoRow struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Stage       string `json:"stage" yaml:"stage"`
	Status      string `json:"status" yaml:"status"`
	NeedsAction bool   `json:"needsAction" yaml:"needs_action"`
	Deadline    string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Progress    string `json:"progress,omitempty" yaml:"progress,omitempty"`
	Tracker     string `json:"tracker,omitempty" yaml:"tracker,omitempty"`
	Preview     string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

type contractRow struct {
	Name     string `json:"name" yaml:"name"`
	Status   string `json:"status" yaml:"status"`
	Videos   string `json:"videos" yaml:"videos"`
	Progress string `json:"progress" yaml:"progress"`
	Period   string `json:"period,omitempty" yaml:"period,omitempty"`
}

type memberRow struct {
	Name     string `json:"name" yaml:"name"`
	Roles    string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
}

type dashboardOutput struct {
	ClientID       string        `json:"clientId" yaml:"client_id"`
	Company        string        `json:"company" yaml:"company"`
	PendingReviews int           `json:"pendingReviews" yaml:"pending_reviews"`
	FetchedAt      time.Time     `json:"fetchedAt" yaml:"fetched_at"`
	Ongoing        []videoRow    `json:"ongoing" yaml:"ongoing"`
	History        []videoRow    `json:"history" yaml:"history"`
	Contracts      []contractRow `json:"contracts" yaml:"contracts"`
	Team           []memberRow   `json:"team" yaml:"team"`
}

func newDashboardOutput(d *domain.Dashboard, now time.Time) dashboardOutput {
	out := dashboardOutput{
		ClientID:       d.Client.ID,
		Company:        d.Client.CompanyName,
		PendingReviews: d.PendingReviews(),
		FetchedAt:      d.FetchedAt,
		Ongoing:        videoRows(d.Ongoing()),
		History:        videoRows(d.History(now)),
		Contracts:      make([]contractRow, 0, len(d.Contracts)),
		Team:           make([]memberRow, 0, len(d.Team)),
	}
	for _, c := range d.Contracts {
		period := ""
		if c.StartDate != "" || c.EndDate != "" {
			period = c.StartDate + " → " + c.EndDate
		}
		out.Contracts = append(out.Contracts, contractRow{
			Name:     c.Name,
			Status:   c.Status,
			Videos:   fmt.Sprintf("%d/%d", c.DeliveredVideos, c.TotalVideos),
			Progress: fmt.Sprintf("%.0f%%", c.ProgressionPercent),
			Period:   period,
		})
	}
	for _, m := range d.Team {
		out.Team = append(out.Team, memberRow{
			Name:     m.Name,
			Roles:    strings.Join(m.Roles, ", "),
			Email:    m.Email,
			WhatsApp: m.WhatsAppLink(),
		})
	}
	return out
}

func videoRows(videos []domain.Video) []videoRow {
	rows := make([]videoRow, 0, len(videos))
	for _, v := range videos {
		row := videoRow{
			ID:          v.ID,
			Title:       v.Title,
			Stage:       v.Stage.String(),
			Status:      domain.DisplayLabel(v.Status),
			NeedsAction: v.Stage.NeedsClientAction(),
			Deadline:    v.Deadline,
			Preview:     domain.EmbedURL(v.VideoURL),
		}
		if v.Progress > 0 {
			row.Progress = fmt.Sprintf("%.0f%%", v.Progress)
		}
		if step := v.Stage.TrackerStep(); step >= 0 {
			row.Tracker = fmt.Sprintf("%s %d/%d", domain.TrackerSteps[step], step+1, len(domain.TrackerSteps))
		}
		rows = append(rows, row)
	}
	return rows
}

func writeOutput(cmd *cobra.Command, format string, v any, renderText func(io.Writer, bool) error) error {
	w := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderText(w, shouldColorize(w))
	}
}

func renderDashboard(w io.Writer, out dashboardOutput, colorize bool) error {
	var b strings.Builder

	b.WriteString(heading(out.Company, colorize))
	b.WriteString("\n")
	pending := fmt.Sprintf("%d video(s) awaiting your review", out.PendingReviews)
	if out.PendingReviews > 0 {
		pending = paint(pending, ansiYellow, colorize)
	} else {
		pending = paint("Nothing awaiting your review", ansiGreen, colorize)
	}
	b.WriteString(pending)
	b.WriteString("\n\n")

	b.WriteString(heading("Ongoing", colorize))
	b.WriteString("\n")
	b.WriteString(renderVideoTable(out.Ongoing, colorize))
	b.WriteString("\n\n")

	if len(out.History) > 0 {
		b.WriteString(heading("Delivered", colorize))
		b.WriteString("\n")
		b.WriteString(renderVideoTable(out.History, colorize))
		b.WriteString("\n\n")
	}

	if len(out.Contracts) > 0 {
		rows := make([][]string, 0, len(out.Contracts))
		for _, c := range out.Contracts {
			rows = append(rows, []string{c.Name, c.Status, c.Videos, c.Progress, c.Period})
		}
		b.WriteString(heading("Contracts", colorize))
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Contract", "Status", "Videos", "Progress", "Period"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
		b.WriteString("\n\n")
	}

	if len(out.Team) > 0 {
		rows := make([][]string, 0, len(out.Team))
		for _, m := range out.Team {
			rows = append(rows, []string{m.Name, m.Roles, m.Email, m.WhatsApp})
		}
		b.WriteString(heading("Your team", colorize))
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Name", "Roles", "Email", "WhatsApp"}, rows, nil))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderVideoTable(rows []videoRow, colorize bool) string {
	if len(rows) == 0 {
		return "  (none)"
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := r.Status
		if r.NeedsAction {
			status = paint(status+" (to validate)", ansiYellow, colorize)
		}
		cells = append(cells, []string{r.ID, r.Title, status, r.Tracker, r.Deadline, r.Progress})
	}
	return renderTable([]string{"ID", "Title", "Status", "Step", "Deadline", "Progress"}, cells,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
}

func heading(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return paint(line, ansiBlue, colorize)
}

func paint(s, color string, colorize bool) string {
	if !colorize {
		return s
	}
	return color + s + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
