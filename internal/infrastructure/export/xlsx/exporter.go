// Package xlsx renders a client dashboard as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verticalview/client-portal/internal/core/domain"
)

const (
	SheetClient    = "Client"
	SheetVideos    = "Vidéos"
	SheetContracts = "Contrats"
	SheetTeam      = "Équipe"

	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	videoHeader    = []any{"Titre", "Étape", "Statut", "Action client", "Deadline", "Livraison", "Avancement", "Priorité", "Lien"}
	contractHeader = []any{"Contrat", "Type", "Statut", "Vidéos prévues", "Vidéos livrées", "Début", "Fin", "Progression"}
	teamHeader     = []any{"Nom", "Rôles", "E-mail", "WhatsApp"}
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return contentType
}

// Export writes one sheet per entity kind. Videos keep the dashboard order.
func (e *Exporter) Export(w io.Writer, dashboard *domain.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetClient); err != nil {
		return fmt.Errorf("rename client sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	client := dashboard.Client
	summary := [][]any{
		{"Société", client.CompanyName},
		{"E-mail", client.Email},
		{"Statut", client.Status},
		{"Type", client.Type},
		{"Vidéos en attente de validation", dashboard.PendingReviews()},
		{"Export", dashboard.FetchedAt.Format("2006-01-02 15:04")},
	}
	if err := writeRows(f, SheetClient, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetClient, "A1", fmt.Sprintf("A%d", len(summary)), header); err != nil {
		return fmt.Errorf("style client sheet: %w", err)
	}

	videos := make([][]any, 0, len(dashboard.Videos)+1)
	videos = append(videos, videoHeader)
	for _, v := range dashboard.Videos {
		action := ""
		if v.Stage.NeedsClientAction() {
			action = "À valider"
		}
		videos = append(videos, []any{
			v.Title,
			v.Stage.String(),
			domain.DisplayLabel(v.Status),
			action,
			v.Deadline,
			v.DeliveryDate,
			v.Progress,
			v.Priority,
			v.VideoURL,
		})
	}
	if err := addTable(f, SheetVideos, videos, header); err != nil {
		return err
	}

	contracts := make([][]any, 0, len(dashboard.Contracts)+1)
	contracts = append(contracts, contractHeader)
	for _, c := range dashboard.Contracts {
		contracts = append(contracts, []any{
			c.Name, c.Type, c.Status, c.TotalVideos, c.DeliveredVideos, c.StartDate, c.EndDate, c.ProgressionPercent,
		})
	}
	if err := addTable(f, SheetContracts, contracts, header); err != nil {
		return err
	}

	team := make([][]any, 0, len(dashboard.Team)+1)
	team = append(team, teamHeader)
	for _, m := range dashboard.Team {
		team = append(team, []any{m.Name, strings.Join(m.Roles, ", "), m.Email, m.WhatsApp})
	}
	if err := addTable(f, SheetTeam, team, header); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addTable(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("header range for %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header of %s: %w", sheet, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for %s row %d: %w", sheet, i+1, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
