package bot

import (
	"fmt"
	"strings"

	"github.com/cat-time-bot/cattime/internal/app/achievement"
	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/domain"
)

// RenderDigest builds the evening group message for one day. Returns
// "" when nothing happened, so callers can skip the announcement.
func RenderDigest(digest *domain.DailyDigest) string {
	if digest == nil || !digest.HasActivity() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Итоги дня %s* 📊\n\n", digest.Date.Format("02.01.2006"))
	for i, e := range digest.Entries {
		fmt.Fprintf(&sb, "%d. @%s — выездов: %d, время: %s, опыт: %d XP\n",
			i+1, e.Username, e.TotalTrips, formatDuration(e.TotalTime), e.Experience)
	}
	fmt.Fprintf(&sb, "\nВсего выездов: %d\nОбщее время: %s\nОбщий опыт: %d XP",
		digest.TotalTrips, formatDuration(digest.TotalTime), digest.TotalExperience)
	return sb.String()
}

// RenderRollover builds group messages for a season rollover: one per
// ended season (with the podium) and one per started season.
func RenderRollover(report *season.Report) []string {
	if report == nil {
		return nil
	}

	var out []string
	medals := []string{"🥇", "🥈", "🥉"}
	for _, ended := range report.Ended {
		var sb strings.Builder
		fmt.Fprintf(&sb, "🏁 *Сезон «%s» завершён!* 🏁\n", ended.Season.Name)
		if len(ended.Winners) == 0 {
			sb.WriteString("\nВ этом сезоне никто не выезжал. 😿")
		} else {
			sb.WriteString("\nПобедители:\n")
			for i, w := range ended.Winners {
				medal := ""
				if i < len(medals) {
					medal = medals[i] + " "
				}
				award := ""
				if i < len(achievement.SeasonAwards) {
					award = " — " + achievement.SeasonAwards[i]
				}
				fmt.Fprintf(&sb, "%s@%s (уровень %d, %d XP)%s\n",
					medal, w.Username, w.Level, w.Experience, award)
			}
		}
		out = append(out, sb.String())
	}

	started := report.Started
	if report.Created != nil {
		started = append(started, *report.Created)
	}
	for _, s := range started {
		out = append(out, fmt.Sprintf("🎉 *Начался новый сезон «%s»!* 🎉\n"+
			"Он продлится до %s. Вперёд к выездам! 😺",
			s.Name, s.EndDate.Format("02.01.2006")))
	}
	return out
}
