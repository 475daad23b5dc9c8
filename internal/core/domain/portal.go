package domain

import (
	"sort"
	"strings"
	"time"
)

type Client struct {
	ID            string `json:"id"`
	CompanyName   string `json:"companyName"`
	LogoURL       string `json:"logoUrl"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	DriveTournage string `json:"driveTournage,omitempty"`
}

type Contract struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	Status             string  `json:"status"`
	TotalVideos        int     `json:"totalVideos"`
	DeliveredVideos    int     `json:"deliveredVideos"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	ProgressionPercent float64 `json:"progressionPercent"`
	ContractFileURL    string  `json:"contractFileUrl,omitempty"`
	ContractFileName   string  `json:"contractFileName,omitempty"`
}

// ContractActiveStatus is the lifecycle value of a running contract.
const ContractActiveStatus = "En cours"

func (c Contract) IsActive() bool {
	return c.Status == ContractActiveStatus
}

type Video struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Format          string  `json:"format"`
	Language        string  `json:"language"`
	Status          string  `json:"status"`
	Stage           Stage   `json:"stage"`
	VideoURL        string  `json:"videoUrl"`
	DriveURL        string  `json:"driveUrl"`
	DriveSessionURL string  `json:"driveSessionUrl,omitempty"`
	Priority        string  `json:"priority"`
	Progress        float64 `json:"progress"`
	Deadline        string  `json:"deadline"`
	DeliveryDate    string  `json:"deliveryDate,omitempty"`
	InvoiceNumber   string  `json:"invoiceNumber"`
	RushURL         string  `json:"rushUrl,omitempty"`
}

type TeamMember struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
	Email    string   `json:"email"`
	WhatsApp string   `json:"whatsapp"`
	PhotoURL string   `json:"photoUrl"`
}

// Initials returns up to two upper-cased initials of the member's name.
func (m TeamMember) Initials() string {
	initials := make([]rune, 0, 2)
	for _, part := range strings.Fields(m.Name) {
		initials = append(initials, []rune(part)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

// WhatsAppLink returns a wa.me deep link, or "" when no digits are present.
func (m TeamMember) WhatsAppLink() string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m.WhatsApp)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

type Feedback struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
	Type    string `json:"type"`
}

// Dashboard is one fetch cycle's projection of a client's data. It is
// rebuilt on every refresh and never patched.
type Dashboard struct {
	Client    Client       `json:"client"`
	Contracts []Contract   `json:"contracts"`
	Videos    []Video      `json:"videos"`
	Team      []TeamMember `json:"team"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

// Ongoing returns the videos still in production, ordered by stage priority.
func (d *Dashboard) Ongoing() []Video {
	out := make([]Video, 0, len(d.Videos))
	for _, v := range d.Videos {
		if !v.Stage.IsClosed() {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stage.SortPriority() < out[j].Stage.SortPriority()
	})
	return out
}

// History returns delivered or archived videos whose deadline is missing or
// not older than one month, most recent deadline first.
func (d *Dashboard) History(now time.Time) []Video {
	cutoff := now.AddDate(0, -1, 0)
	out := make([]Video, 0)
	for _, v := range d.Videos {
		if !v.Stage.IsClosed() {
			continue
		}
		if deadline, ok := ParseDate(v.Deadline); ok && deadline.Before(cutoff) {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return deadlineUnix(out[i].Deadline) > deadlineUnix(out[j].Deadline)
	})
	return out
}

// PendingReviews counts videos waiting for the client.
func (d *Dashboard) PendingReviews() int {
	n := 0
	for _, v := range d.Videos {
		if v.Stage.NeedsClientAction() {
			n++
		}
	}
	return n
}

// FindVideo returns the video with the given id.
func (d *Dashboard) FindVideo(id string) (Video, bool) {
	for _, v := range d.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return Video{}, false
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"}

// ParseDate parses the date formats the store emits.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func deadlineUnix(raw string) int64 {
	t, ok := ParseDate(raw)
	if !ok {
		return 0
	}
	return t.Unix()
}
