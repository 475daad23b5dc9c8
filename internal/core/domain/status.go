package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stage is a production pipeline stage of a video.
type Stage int

const (
	StageUnknown Stage = iota
	StageBrief
	StagePreProduction
	StageShooting
	StagePostProduction
	StageClientReview
	StageInternalRevision
	StageClientValidated
	StageDelivered
	StageArchived
)

// RevisionFeedbackType tags feedback records created by a revision request.
const RevisionFeedbackType = "🔄 Révision demandée"

type stageInfo struct {
	name    string
	literal string
	key     string
}

var stageTable = map[Stage]stageInfo{
	StageBrief:            {name: "brief", literal: "📝 1. À brief", key: "brief"},
	StagePreProduction:    {name: "pre_production", literal: "📋 2. Pré-prod", key: "pre-prod"},
	StageShooting:         {name: "shooting", literal: "🎬 Tournage planifié", key: "tournage"},
	StagePostProduction:   {name: "post_production", literal: "✂️ 3. Post-production", key: "post-prod"},
	StageClientReview:     {name: "client_review", literal: "📨 4. Review Client", key: "review client"},
	StageInternalRevision: {name: "internal_revision", literal: "🔁 5. Revision Interne", key: "revision interne"},
	StageClientValidated:  {name: "client_validated", literal: "☑️ 6. Validé par le client", key: "valide"},
	StageDelivered:        {name: "delivered", literal: "📦 7. Livrée", key: "livre"},
	StageArchived:         {name: "archived", literal: "🗄️ 8. Archivée", key: "archive"},
}

// Pipeline lists the stages in canonical production order.
var Pipeline = []Stage{
	StageBrief,
	StagePreProduction,
	StageShooting,
	StagePostProduction,
	StageClientReview,
	StageInternalRevision,
	StageClientValidated,
	StageDelivered,
	StageArchived,
}

// matchOrder is the order in which label keys are tested. Keys are disjoint
// today; review stages go first so a future label mentioning two keys still
// resolves to the one requiring client attention.
var matchOrder = []Stage{
	StageClientReview,
	StageInternalRevision,
	StageClientValidated,
	StageDelivered,
	StageArchived,
	StagePostProduction,
	StagePreProduction,
	StageShooting,
	StageBrief,
}

// TrackerSteps are the client-visible progress steps.
var TrackerSteps = []string{"Brief", "Pré-prod", "Tournage", "Post-prod", "Review", "Validé", "Livré"}

var trackerIndex = map[Stage]int{
	StageBrief:           0,
	StagePreProduction:   1,
	StageShooting:        2,
	StagePostProduction:  3,
	StageClientReview:    4,
	StageClientValidated: 5,
	StageDelivered:       6,
}

// ParseStage maps a raw store status to a stage. Decorations (emoji, step
// numbers, punctuation) are ignored, as are case and diacritics.
func ParseStage(raw string) Stage {
	folded := foldLabel(DisplayLabel(raw))
	if folded == "" {
		return StageUnknown
	}
	for _, stage := range matchOrder {
		if strings.Contains(folded, stageTable[stage].key) {
			return stage
		}
	}
	return StageUnknown
}

// DisplayLabel strips everything before the first letter of a status.
func DisplayLabel(raw string) string {
	trimmed := strings.TrimLeftFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return strings.TrimSpace(trimmed)
}

func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Literal is the canonical store value written for the stage.
func (s Stage) Literal() string {
	return stageTable[s].literal
}

func (s Stage) String() string {
	if info, ok := stageTable[s]; ok {
		return info.name
	}
	return "unknown"
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Stage) Known() bool {
	_, ok := stageTable[s]
	return ok
}

func (s Stage) NeedsClientAction() bool {
	return s == StageClientReview
}

func (s Stage) IsComplete() bool {
	return s == StageClientValidated || s == StageDelivered
}

func (s Stage) InProgress() bool {
	return !s.NeedsClientAction() && !s.IsComplete()
}

// IsClosed reports whether the video leaves the ongoing list.
func (s Stage) IsClosed() bool {
	return s == StageDelivered || s == StageArchived
}

// SortPriority orders videos for display: client review first, then the
// pipeline, unrecognized statuses last.
func (s Stage) SortPriority() int {
	switch s {
	case StageClientReview:
		return 0
	case StageBrief:
		return 1
	case StagePreProduction:
		return 2
	case StageShooting:
		return 3
	case StagePostProduction:
		return 4
	case StageInternalRevision:
		return 5
	case StageClientValidated:
		return 6
	case StageDelivered:
		return 7
	case StageArchived:
		return 8
	default:
		return 10
	}
}

// TrackerStep returns the index in TrackerSteps, or -1 when the stage is not
// shown on the tracker.
func (s Stage) TrackerStep() int {
	if idx, ok := trackerIndex[s]; ok {
		return idx
	}
	return -1
}

type StatusClass string

const (
	ClassNeedsAction StatusClass = "needs_action"
	ClassInProgress  StatusClass = "in_progress"
	ClassComplete    StatusClass = "complete"
)

func (s Stage) Class() StatusClass {
	switch {
	case s.NeedsClientAction():
		return ClassNeedsAction
	case s.IsComplete():
		return ClassComplete
	default:
		return ClassInProgress
	}
}
