package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/scoring"
)

const (
	dailyHeader   = "🌊 **Marine Sessions** 🌊\n\n"
	topSessions   = 3
	forecastRange = "3 prochains jours"
)

// FormatDailyMessage renders the evening digest for summary in Telegram
// Markdown. appURL, when set, is linked at the bottom.
func FormatDailyMessage(summary models.AnalysisSummary, appURL string) string {
	var b strings.Builder
	b.WriteString(dailyHeader)

	best := summary.TomorrowBest
	switch {
	case best == nil:
		b.WriteString("❌ **Pas de session recommandée demain**\n")
		b.WriteString("Les conditions ne sont pas favorables.\n\n")
	case best.Score >= scoring.ExcellentScore:
		b.WriteString("✅ **EXCELLENTE SESSION DEMAIN !**\n")
		writeSession(&b, best)
		fmt.Fprintf(&b, "📝 %s\n\n", best.Conditions)
	case best.Score >= scoring.GoodScore:
		b.WriteString("⚠️ **Session correcte demain**\n")
		writeSession(&b, best)
		b.WriteString("\n")
	default:
		b.WriteString("🟠 **Session possible demain (conditions moyennes)**\n")
		writeSession(&b, best)
		b.WriteString("\n")
	}

	if len(summary.BestSessions) > 0 {
		b.WriteString("🎯 **Meilleures sessions à venir:**\n")
		for i, s := range summary.BestSessions {
			if i == topSessions {
				break
			}
			fmt.Fprintf(&b, "%d. %s %s - %dkts %s - %.1fm (%dpts)\n",
				i+1, s.Date, s.TimeStart, s.WindSpeedKnots, s.WindDirection, s.TideHeight, s.Score)
		}
		b.WriteString("\n")
	} else if best == nil {
		fmt.Fprintf(&b, "📊 **Aucune session prévue sur les %s**\n\n", forecastRange)
	}

	fmt.Fprintf(&b, "📊 **Résumé %s:**\n", forecastRange)
	fmt.Fprintf(&b, "🟢 Sessions excellentes: %d\n", summary.Analysis.ExcellentSessions)
	fmt.Fprintf(&b, "🟡 Sessions correctes: %d\n", summary.Analysis.GoodSessions)
	fmt.Fprintf(&b, "🟠 Sessions moyennes: %d\n", summary.Analysis.AverageSessions)

	if appURL != "" {
		fmt.Fprintf(&b, "\n📱 [Consulte l'app pour plus de détails !](%s)\n", appURL)
	}
	return b.String()
}

func writeSession(b *strings.Builder, s *models.SessionWindow) {
	fmt.Fprintf(b, "📅 %s\n", s.Date)
	fmt.Fprintf(b, "⏰ %s - %s\n", s.TimeStart, s.TimeEnd)
	fmt.Fprintf(b, "💨 Vent: %d kts %s\n", s.WindSpeedKnots, s.WindDirection)
	fmt.Fprintf(b, "🌊 Marée: %.1fm\n", s.TideHeight)
	fmt.Fprintf(b, "⭐ Score: %d/100\n", s.Score)
}

// FormatLiveWindMessage renders the alert sent when the station measures
// a sailable wind at spotName.
func FormatLiveWindMessage(spotName string, r *models.StationReading) string {
	var b strings.Builder
	b.WriteString("🌬️ *Vent favorable détecté !*\n\n")
	fmt.Fprintf(&b, "📍 %s\n", spotName)
	fmt.Fprintf(&b, "💨 %s nœuds\n", number(r.WindSpeedKnots))
	fmt.Fprintf(&b, "🧭 %s° (%s)\n", number(r.WindDirection), scoring.DirectionLabel(r.WindDirection))
	fmt.Fprintf(&b, "🌡️ %s°C\n\n", number(r.Temperature))
	b.WriteString("⛵ Conditions parfaites pour naviguer !")
	return b.String()
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
