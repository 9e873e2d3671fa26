package gtfsrt

import (
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

func TestConvertAlertEffect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, transit.ServiceAlertEffectDetour, convertAlertEffect(gtfs.Alert_DETOUR))
	assert.Equal(t, transit.ServiceAlertEffectModifiedService, convertAlertEffect(gtfs.Alert_MODIFIED_SERVICE))
	assert.Equal(t, transit.ServiceAlertEffectNoService, convertAlertEffect(gtfs.Alert_NO_SERVICE))
	assert.Equal(t, transit.ServiceAlertEffectReducedService, convertAlertEffect(gtfs.Alert_REDUCED_SERVICE))
	assert.Equal(t, transit.ServiceAlertEffectSevereDelays, convertAlertEffect(gtfs.Alert_SIGNIFICANT_DELAYS))
	assert.Equal(t, transit.ServiceAlertEffectStopMoved, convertAlertEffect(gtfs.Alert_STOP_MOVED))
	assert.Equal(t, transit.ServiceAlertEffectOther, convertAlertEffect(gtfs.Alert_UNKNOWN_EFFECT))
	assert.Equal(t, transit.ServiceAlertEffectOther, convertAlertEffect(gtfs.Alert_ACCESSIBILITY_ISSUE))
}

func TestFirstTranslation(t *testing.T) {
	t.Parallel()

	assert.Empty(t, firstTranslation(nil))
	assert.Empty(t, firstTranslation(&gtfs.TranslatedString{}))

	text := "Route 8 detour via Anne St"
	translated := &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{Text: &text},
		},
	}

	assert.Equal(t, text, firstTranslation(translated))
}
