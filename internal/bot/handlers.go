package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/domain"
)

const helpText = "😺 Привет! 😺 Вот список доступных команд:\n" +
	"\n" +
	"*Основные команды:*\n" +
	"/help - Показать это сообщение с инструкциями.\n" +
	"/join <Организация> - Прибыть к указанной организации.\n" +
	"/leave - Покинуть текущую организацию и записать затраченное время.\n" +
	"/edit <ЧЧ:ММ> - Изменить время прибытия в текущую организацию.\n" +
	"/editleave <ЧЧ:ММ> - Изменить время ухода за сегодня.\n" +
	"\n" +
	"*Дополнительные команды:*\n" +
	"/profile - Показать уровень и прогресс в текущем сезоне.\n" +
	"/top - Показать лидеров сезона.\n" +
	"/mew - Получить случайное фото кота."

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg, helpText)
}

func (b *Bot) handleJoin(msg *tgbotapi.Message) {
	orgName := strings.TrimSpace(msg.CommandArguments())
	if orgName == "" {
		b.reply(msg, "❌ *Ошибка!* ❌\n"+
			"Пожалуйста, укажите название организации после команды /join.")
		return
	}

	known, err := b.engine.KnownOrganization(orgName)
	if err != nil {
		b.log.Error("org lookup failed", zap.Error(err))
	}

	result, err := b.engine.Join(msg.From.ID, msg.From.UserName, orgName, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadOrgName):
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Название организации должно содержать только"+
				" буквы русского или английского алфавита, цифры и тире.")
		case errors.Is(err, domain.ErrAlreadyCheckedIn):
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Вы ещё не покинули предыдущую организацию.")
		default:
			b.log.Error("join failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
			b.reply(msg, "🚨 *Произошла ошибка при поиске или создании организации.* 🚨")
		}
		return
	}

	text := fmt.Sprintf("😺 *Вы прибыли в организацию %s* 😺\n"+
		"Время прибытия: %s.",
		result.OrgName, result.JoinTime.Format("15:04"))
	if !known {
		if similar, err := b.engine.SuggestOrganizations(orgName); err == nil && len(similar) > 0 {
			lines := make([]string, 0, len(similar))
			for i, name := range similar {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
			}
			text += "\n\nПохожие организации уже существуют:\n" + strings.Join(lines, "\n")
		}
	}
	b.reply(msg, text)
}

func (b *Bot) handleLeave(msg *tgbotapi.Message) {
	result, err := b.engine.Leave(msg.From.ID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNoOpenSession) {
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Вы не прибыли ни к одной организации.")
			return
		}
		b.log.Error("leave failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "🚨 *Произошла ошибка при обработке вашего запроса.* 🚨")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "😺 *Вы покинули организацию %s* 😺\n"+
		"Время ухода: %s.\n"+
		"Затраченное время: %s.\n"+
		"Опыт за выезд: %d XP.",
		result.OrgName, result.LeaveTime.Format("15:04"),
		result.SpentTime, result.Experience)
	if len(result.Achievements) > 0 {
		sb.WriteString("\n\n🏆 Достижения:\n")
		for _, a := range result.Achievements {
			fmt.Fprintf(&sb, "• %s\n", a)
		}
	}
	if result.LevelUp {
		fmt.Fprintf(&sb, "\n🎉 *Новый уровень %d: %s!* 🎉",
			result.NewLevel, result.NewTitle)
	}
	b.reply(msg, sb.String())
}

func (b *Bot) handleEditJoin(msg *tgbotapi.Message) {
	newTime, ok := b.parseClockArg(msg)
	if !ok {
		return
	}

	result, err := b.engine.EditJoinTime(msg.From.ID, newTime)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoOpenSession):
			b.reply(msg, "🚨 *Ошибка!* 🚨\n"+
				"У вас нет активной организации, "+
				"для которой можно изменить время прибытия.")
		case errors.Is(err, domain.ErrFutureTimestamp):
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Вы не можете выбрать время, которое больше текущего. "+
				"Пожалуйста, укажите время, которое меньше или равно текущему.")
		case errors.Is(err, domain.ErrInvalidOrdering):
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Время прибытия не может быть позже времени ухода.")
		default:
			b.log.Error("edit join failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
			b.reply(msg, "🚨 *Произошла ошибка при обработке вашего запроса.* 🚨")
		}
		return
	}

	b.reply(msg, fmt.Sprintf("😻 *Успешно!* 😻\n"+
		"Время прибытия в организацию %s успешно изменено на %s.",
		result.OrgName, result.NewTime.Format("15:04")))
}

func (b *Bot) handleEditLeave(msg *tgbotapi.Message) {
	newTime, ok := b.parseClockArg(msg)
	if !ok {
		return
	}

	result, err := b.engine.EditLeaveTime(msg.From.ID, newTime)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoEditableSession):
			b.reply(msg, "🚨 *Ошибка!* 🚨\n"+
				"За сегодня нет завершённых выездов, "+
				"для которых можно изменить время ухода.")
		case errors.Is(err, domain.ErrFutureTimestamp):
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Вы не можете выбрать время, которое больше текущего. "+
				"Пожалуйста, укажите время, которое меньше или равно текущему.")
		case errors.Is(err, domain.ErrInvalidOrdering):
			b.reply(msg, "❌ *Ошибка!* ❌\n"+
				"Время ухода не может быть раньше времени прибытия.")
		default:
			b.log.Error("edit leave failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
			b.reply(msg, "🚨 *Произошла ошибка при обработке вашего запроса.* 🚨")
		}
		return
	}

	b.reply(msg, fmt.Sprintf("😻 *Успешно!* 😻\n"+
		"Время ухода из организации %s успешно изменено на %s.",
		result.OrgName, result.NewTime.Format("15:04")))
}

func (b *Bot) handleProfile(msg *tgbotapi.Message) {
	profile, err := b.engine.Profile(msg.From.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoActiveSeason):
			b.reply(msg, "🚨 Сейчас нет активного сезона. 🚨")
		case errors.Is(err, domain.ErrRankNotFound):
			b.reply(msg, "😿 У вас пока нет выездов в этом сезоне. 😿")
		default:
			b.log.Error("profile failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
			b.reply(msg, "🚨 *Произошла ошибка при обработке вашего запроса.* 🚨")
		}
		return
	}

	info := profile.LevelInfo
	text := fmt.Sprintf("😺 *Профиль @%s* 😺\n"+
		"Сезон: %s\n"+
		"\n"+
		"Уровень %d: *%s*\n"+
		"Опыт: %d XP\n"+
		"%s %.0f%%\n"+
		"До следующего уровня: %d XP\n"+
		"\n"+
		"Выездов за сезон: %d\n"+
		"Время на выездах: %s",
		profile.Username, profile.SeasonName,
		info.Level, info.Title,
		info.CurrentExp,
		progressBar(info.Progress), info.Progress,
		info.ExpToNext,
		profile.Visits, formatDuration(profile.TotalTime))
	b.reply(msg, text)
}

func (b *Bot) handleTop(msg *tgbotapi.Message) {
	ranks, err := b.engine.Leaderboard(10)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSeason) {
			b.reply(msg, "🚨 Сейчас нет активного сезона. 🚨")
			return
		}
		b.log.Error("leaderboard failed", zap.Error(err))
		b.reply(msg, "🚨 *Произошла ошибка при обработке вашего запроса.* 🚨")
		return
	}
	if len(ranks) == 0 {
		b.reply(msg, "😿 В этом сезоне ещё никто не выезжал. 😿")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("🏆 *Лидеры сезона* 🏆\n\n")
	for i, r := range ranks {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		fmt.Fprintf(&sb, "%s @%s — уровень %d, %d XP, выездов: %d\n",
			prefix, r.Username, r.Level, r.Experience, r.Visits)
	}
	b.reply(msg, sb.String())
}

func (b *Bot) handleMew(msg *tgbotapi.Message) {
	resp, err := http.Get("https://api.thecatapi.com/v1/images/search")
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		b.reply(msg, "😿 Не удалось получить фото котика. 😿")
		return
	}
	defer resp.Body.Close()

	var cats []struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cats); err != nil || len(cats) == 0 {
		b.reply(msg, "😿 Не удалось получить фото котика. 😿")
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(cats[0].URL))
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error("send photo failed", zap.Error(err))
	}
}

// parseClockArg reads a single ЧЧ:ММ argument and anchors it to today.
func (b *Bot) parseClockArg(msg *tgbotapi.Message) (time.Time, bool) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" || strings.ContainsRune(arg, ' ') {
		b.reply(msg, "🚨 *Ошибка!* 🚨\n"+
			"Пожалуйста, укажите новое время "+
			"в формате *ЧЧ:ММ* (например, 10:15).")
		return time.Time{}, false
	}

	clock, err := time.Parse("15:04", arg)
	if err != nil {
		b.reply(msg, "❌ *Ошибка!* ❌\n"+
			"Неверный формат времени. "+
			"Пожалуйста, укажите время в формате *ЧЧ:ММ* (например, 09:15).")
		return time.Time{}, false
	}

	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0, now.Location()), true
}

func progressBar(pct float64) string {
	const width = 10
	filled := int(pct / 100 * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours < 1 {
		return fmt.Sprintf("%d мин.", minutes)
	}
	return fmt.Sprintf("%d ч. %d мин.", hours, minutes)
}
