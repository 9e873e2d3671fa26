package detour

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

var detourRelevantEffects = map[transit.ServiceAlertEffect]bool{
	transit.ServiceAlertEffectDetour:          true,
	transit.ServiceAlertEffectModifiedService: true,
	transit.ServiceAlertEffectNoService:       true,
	transit.ServiceAlertEffectReducedService:  true,
}

// CorrelateServiceAlerts cross-references every suspected detour against the
// official service alert feed. A matching detour-relevant alert on the same
// route feeds the official-alert confidence bonus; a detour whose alert has
// since disappeared drops back to unmatched.
func (e *Engine) CorrelateServiceAlerts(state *EngineState, alerts []transit.ServiceAlert) {
	now := time.Now()

	for _, detour := range state.ActiveDetours {
		if detour.Status != DetourStatusSuspected {
			continue
		}

		matched := false

		for _, alert := range alerts {
			if !detourRelevantEffects[alert.Effect] {
				continue
			}

			for _, routeID := range alert.AffectedRoutes {
				if routeID != detour.RouteID {
					continue
				}

				matchedAt := now
				detour.OfficialAlert = AlertMatch{
					Matched:   true,
					AlertID:   alert.PrimaryIdentifier,
					Title:     alert.Title,
					Effect:    string(alert.Effect),
					Severity:  alert.Severity,
					MatchedAt: &matchedAt,
				}
				detour.AlertCorrelation = AlertCorrelationMatched
				matched = true

				log.Debug().
					Str("detour", detour.PrimaryIdentifier).
					Str("alert", alert.PrimaryIdentifier).
					Msg("Detour matched official service alert")

				break
			}

			if matched {
				break
			}
		}

		if !matched {
			detour.OfficialAlert = AlertMatch{Matched: false}
			detour.AlertCorrelation = AlertCorrelationNone
		}

		e.updateDetourConfidence(detour, now)
	}
}
