package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

func session(score int) models.SessionWindow {
	return models.SessionWindow{
		Date:           "11/06/2025",
		TimeStart:      "14:00",
		TimeEnd:        "16:00",
		WindSpeedKnots: 22,
		WindDirection:  "O",
		TideHeight:     4.25,
		Score:          score,
		Conditions:     "Vent excellent + Pleine eau",
	}
}

func TestFormatDailyMessage_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		best     *models.SessionWindow
		contains []string
		excludes []string
	}{
		{
			name:     "excellent",
			best:     ptr(session(92)),
			contains: []string{"✅ **EXCELLENTE SESSION DEMAIN !**", "📝 Vent excellent + Pleine eau", "⭐ Score: 92/100"},
		},
		{
			name:     "correct",
			best:     ptr(session(68)),
			contains: []string{"⚠️ **Session correcte demain**", "⏰ 14:00 - 16:00"},
			excludes: []string{"📝"},
		},
		{
			name:     "possible",
			best:     ptr(session(48)),
			contains: []string{"🟠 **Session possible demain (conditions moyennes)**", "💨 Vent: 22 kts O"},
		},
		{
			name:     "none",
			contains: []string{"❌ **Pas de session recommandée demain**", "Les conditions ne sont pas favorables."},
			excludes: []string{"⭐"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatDailyMessage(models.AnalysisSummary{TomorrowBest: tt.best}, "")
			assert.True(t, strings.HasPrefix(msg, "🌊 **Marine Sessions** 🌊\n\n"))
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, msg, s)
			}
		})
	}
}

func TestFormatDailyMessage_TideRounding(t *testing.T) {
	msg := FormatDailyMessage(models.AnalysisSummary{TomorrowBest: ptr(session(90))}, "")
	assert.Contains(t, msg, "🌊 Marée: 4.2m")
}

func TestFormatDailyMessage_TopThree(t *testing.T) {
	best := []models.SessionWindow{session(100), session(90), session(80), session(70)}
	msg := FormatDailyMessage(models.AnalysisSummary{
		BestSessions: best,
		Analysis:     models.SessionCounts{TotalWindows: 6, ExcellentSessions: 3, GoodSessions: 1, AverageSessions: 2},
	}, "https://sessions.example.org")

	assert.Contains(t, msg, "🎯 **Meilleures sessions à venir:**\n")
	assert.Contains(t, msg, "1. 11/06/2025 14:00 - 22kts O - 4.2m (100pts)\n")
	assert.Contains(t, msg, "3. 11/06/2025 14:00 - 22kts O - 4.2m (80pts)\n")
	assert.NotContains(t, msg, "4. ")
	assert.NotContains(t, msg, "Aucune session")
	assert.Contains(t, msg, "🟢 Sessions excellentes: 3\n🟡 Sessions correctes: 1\n🟠 Sessions moyennes: 2\n")
	assert.True(t, strings.HasSuffix(msg, "📱 [Consulte l'app pour plus de détails !](https://sessions.example.org)\n"))
}

func TestFormatDailyMessage_NothingAhead(t *testing.T) {
	msg := FormatDailyMessage(models.AnalysisSummary{}, "")

	assert.Contains(t, msg, "📊 **Aucune session prévue sur les 3 prochains jours**")
	assert.NotContains(t, msg, "📱")
}

func TestFormatLiveWindMessage(t *testing.T) {
	msg := FormatLiveWindMessage("Fouras", &models.StationReading{
		WindSpeedKnots: 12.5,
		WindDirection:  270,
		Temperature:    18.3,
	})

	expected := "🌬️ *Vent favorable détecté !*\n\n" +
		"📍 Fouras\n" +
		"💨 12.5 nœuds\n" +
		"🧭 270° (O)\n" +
		"🌡️ 18.3°C\n\n" +
		"⛵ Conditions parfaites pour naviguer !"
	assert.Equal(t, expected, msg)
}

func ptr[T any](v T) *T {
	return &v
}
