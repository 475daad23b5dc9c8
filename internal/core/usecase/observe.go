package usecase

import (
	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/ports"
)

type noopObserver struct{}

func (noopObserver) ObserveDashboardLoad(string) {}

func (noopObserver) ObserveUnknownStatus() {}

func (noopObserver) ObserveReviewTransition(domain.ReviewAction, string) {}

func observerOrNoop(observer ports.PortalObserver) ports.PortalObserver {
	if observer == nil {
		return noopObserver{}
	}
	return observer
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case domain.IsKind(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
