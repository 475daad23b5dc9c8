// Package fieldmap projects loosely typed store records onto the portal's
// entity types. Every accessor falls back to a default; nothing nil leaks
// into the typed model.
package fieldmap

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/verticalview/client-portal/internal/core/domain"
)

// Store field names. Alternate spellings observed in the base are listed in
// priority order.
const (
	FieldCompanyName   = "Nom du client"
	FieldLogo          = "Logo"
	FieldClientEmail   = "Email contact principal"
	FieldClientStatus  = "Statut"
	FieldClientType    = "Type de client"
	FieldDriveTournage = "Drive Tournage"

	FieldContractName     = "Nom du contrat"
	FieldContractType     = "Type de contrat"
	FieldPlannedVideos    = "Vidéos prévues"
	FieldDeliveredVideos  = "Vidéos livrées"
	FieldStartDate        = "Date de début"
	FieldEndDate          = "Date de fin"
	FieldContractProgress = "Progression accomplissement du contrat %"
	FieldContractFile     = "Contrat"

	FieldVideoTitle      = "Titre vidéo"
	FieldVideoFormat     = "Format vidéo"
	FieldVideoLanguage   = "Langue"
	FieldVideoStatus     = "Statut production"
	FieldDriveSession    = "Lien Drive Session (from Sessions de tournage)"
	FieldVideoPriority   = "Priorité"
	FieldVideoProgress   = "% Avancement"
	FieldVideoDeadline   = "Deadline V1"
	FieldVideoDelivered  = "Date livraison réelle"
	FieldVideoInvoice    = "N° Facture"
	FieldMemberName      = "Nom complet"
	FieldMemberRoles     = "Rôles"
	FieldMemberEmail     = "E-mail"
	FieldMemberWhatsApp  = "WhatsApp"
	FieldMemberPhoto     = "Photo"
	FieldFeedbackVideo   = "Vidéo"
	FieldFeedbackTitle   = "Titre"
	FieldFeedbackComment = "Commentaire"
	FieldFeedbackType    = "Type"
)

var (
	ContractStatusFields = []string{"Statut du contrat", "Statut contrat"}
	VideoURLFields       = []string{"Lien Vidéo", "Lien vidéo", "Lien Video"}
	DriveURLFields       = []string{"Lien Drive", "Lien drive"}
	RushURLFields        = []string{"Lien rushes", "Lien Rushes", "Lien Rush"}
)

const (
	DefaultCompanyName    = "Société Inconnue"
	DefaultClientStatus   = "Actif"
	DefaultContractType   = "Contrat Cadre"
	DefaultContractStatus = "Actif"
	DefaultContractFile   = "contrat.pdf"
	DefaultVideoTitle     = "Sans titre"
	DefaultMemberName     = "Membre"
)

func Client(rec domain.Record) domain.Client {
	f := rec.Fields
	logo, _ := attachment(f, FieldLogo)
	return domain.Client{
		ID:            rec.ID,
		CompanyName:   stringField(f, DefaultCompanyName, FieldCompanyName),
		LogoURL:       logo,
		Email:         stringField(f, "", FieldClientEmail),
		Status:        stringField(f, DefaultClientStatus, FieldClientStatus),
		Type:          stringField(f, "", FieldClientType),
		DriveTournage: stringField(f, "", FieldDriveTournage),
	}
}

func Contract(rec domain.Record) domain.Contract {
	f := rec.Fields
	fileURL, fileName := attachment(f, FieldContractFile)
	if fileURL != "" && fileName == "" {
		fileName = DefaultContractFile
	}
	return domain.Contract{
		ID:                 rec.ID,
		Name:               stringField(f, "", FieldContractName),
		Type:               stringField(f, DefaultContractType, FieldContractType),
		Status:             stringField(f, DefaultContractStatus, ContractStatusFields...),
		TotalVideos:        intField(f, FieldPlannedVideos),
		DeliveredVideos:    intField(f, FieldDeliveredVideos),
		StartDate:          stringField(f, "", FieldStartDate),
		EndDate:            stringField(f, "", FieldEndDate),
		ProgressionPercent: numberField(f, FieldContractProgress),
		ContractFileURL:    fileURL,
		ContractFileName:   fileName,
	}
}

func Video(rec domain.Record) domain.Video {
	f := rec.Fields
	status := stringField(f, domain.StageBrief.Literal(), FieldVideoStatus)
	return domain.Video{
		ID:              rec.ID,
		Title:           stringField(f, DefaultVideoTitle, FieldVideoTitle),
		Format:          stringField(f, "", FieldVideoFormat),
		Language:        stringField(f, "", FieldVideoLanguage),
		Status:          status,
		Stage:           domain.ParseStage(status),
		VideoURL:        stringField(f, "", VideoURLFields...),
		DriveURL:        stringField(f, "", DriveURLFields...),
		DriveSessionURL: stringField(f, "", FieldDriveSession),
		Priority:        stringField(f, "", FieldVideoPriority),
		Progress:        numberField(f, FieldVideoProgress),
		Deadline:        stringField(f, "", FieldVideoDeadline),
		DeliveryDate:    stringField(f, "", FieldVideoDelivered),
		InvoiceNumber:   stringField(f, "", FieldVideoInvoice),
		RushURL:         stringField(f, "", RushURLFields...),
	}
}

func TeamMember(rec domain.Record) domain.TeamMember {
	f := rec.Fields
	photo, _ := attachment(f, FieldMemberPhoto)
	return domain.TeamMember{
		ID:       rec.ID,
		Name:     stringField(f, DefaultMemberName, FieldMemberName),
		Roles:    stringList(f, FieldMemberRoles),
		Email:    stringField(f, "", FieldMemberEmail),
		WhatsApp: stringField(f, "", FieldMemberWhatsApp),
		PhotoURL: photo,
	}
}

// FeedbackFields builds the field bag of a feedback record.
func FeedbackFields(fb domain.Feedback) domain.Fields {
	return domain.Fields{
		FieldFeedbackVideo:   []string{fb.VideoID},
		FieldFeedbackTitle:   fb.Title,
		FieldFeedbackComment: fb.Comment,
		FieldFeedbackType:    fb.Type,
	}
}

// StatusFields builds the update payload of a production status change.
func StatusFields(status string) domain.Fields {
	return domain.Fields{FieldVideoStatus: status}
}

// stringField returns the first non-empty candidate. Lookup arrays yield
// their first string element.
func stringField(f domain.Fields, fallback string, names ...string) string {
	for _, name := range names {
		if s := asString(f[name]); s != "" {
			return s
		}
	}
	return fallback
}

func numberField(f domain.Fields, names ...string) float64 {
	for _, name := range names {
		if n, ok := asNumber(f[name]); ok {
			return n
		}
	}
	return 0
}

func intField(f domain.Fields, names ...string) int {
	return int(numberField(f, names...))
}

func stringList(f domain.Fields, name string) []string {
	out := []string{}
	switch v := f[name].(type) {
	case []any:
		for _, item := range v {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case string:
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// attachment reads url and filename of the first attachment of a field.
func attachment(f domain.Fields, name string) (string, string) {
	items, ok := f[name].([]any)
	if !ok || len(items) == 0 {
		return "", ""
	}
	first, ok := items[0].(map[string]any)
	if !ok {
		return "", ""
	}
	return asString(first["url"]), asString(first["filename"])
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		for _, item := range t {
			if s := asString(item); s != "" {
				return s
			}
		}
		return ""
	case []string:
		for _, s := range t {
			if s != "" {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	case []any:
		if len(t) > 0 {
			return asNumber(t[0])
		}
	}
	return 0, false
}
