// Package season owns the seasonal competition: the active season, the
// per-user SeasonRank rows, catalog-threshold leveling, and the daily
// rollover pass that retires expired seasons and starts new ones.
package season

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app/achievement"
	"github.com/cat-time-bot/cattime/internal/domain"
)

// Ledger applies experience to season ranks and manages season
// lifecycle transitions.
type Ledger struct {
	seasons domain.SeasonRepository
	ranks   domain.RankRepository
	levels  domain.LevelRepository
	grants  domain.AchievementRepository
	log     *zap.Logger
}

// NewLedger wires a season ledger.
func NewLedger(seasons domain.SeasonRepository, ranks domain.RankRepository,
	levels domain.LevelRepository, grants domain.AchievementRepository,
	log *zap.Logger) *Ledger {
	return &Ledger{seasons: seasons, ranks: ranks, levels: levels, grants: grants, log: log}
}

// Current returns the active season, or nil when none is active.
// More than one active season is a recoverable anomaly: the newest one
// wins and the next rollover pass retires the rest.
func (l *Ledger) Current() (*domain.Season, error) {
	active, err := l.seasons.ActiveSeasons()
	if err != nil {
		return nil, fmt.Errorf("list active seasons: %w", err)
	}
	if len(active) == 0 {
		return nil, nil
	}
	if len(active) > 1 {
		l.log.Warn("more than one active season",
			zap.Int("count", len(active)))
	}
	newest := active[len(active)-1]
	return &newest, nil
}

// ApplyExperience folds a closed session's reward into the user's rank
// for the season: find-or-create, add experience/time/visit, then
// recompute the level as the highest catalog row whose threshold is
// covered. Returns the updated rank, whether a level-up happened, and
// the effective level title (nil with an empty catalog).
func (l *Ledger) ApplyExperience(userID int64, username string, season domain.Season,
	delta int64, elapsed time.Duration) (*domain.SeasonRank, bool, *domain.LevelTitle, error) {

	rank, err := l.ranks.FindRank(userID, season.ID)
	if err != nil {
		return nil, false, nil, fmt.Errorf("find rank: %w", err)
	}

	oldLevel := 0
	created := rank == nil
	if created {
		rank = &domain.SeasonRank{
			UserID:     userID,
			Username:   username,
			SeasonID:   season.ID,
			Experience: delta,
			TotalTime:  elapsed,
			Visits:     1,
		}
		if base, err := l.levels.LevelForExperience(0); err == nil && base != nil {
			oldLevel = base.Level
		}
	} else {
		oldLevel = rank.Level
		rank.Experience += delta
		rank.TotalTime += elapsed
		rank.Visits++
		if username != "" {
			rank.Username = username
		}
	}

	title, err := l.levels.LevelForExperience(rank.Experience)
	if err != nil {
		return nil, false, nil, fmt.Errorf("level lookup: %w", err)
	}
	if title != nil {
		rank.Level = title.Level
	} else if rank.Level == 0 {
		rank.Level = 1
	}

	if created {
		err = l.ranks.InsertRank(rank)
	} else {
		err = l.ranks.UpdateRank(rank)
	}
	if err != nil {
		return nil, false, nil, fmt.Errorf("save rank: %w", err)
	}

	return rank, rank.Level > oldLevel, title, nil
}

// LevelInfo renders the catalog position for a rank: current title,
// next threshold and progress percent. With an empty catalog it falls
// back to a bare numeric level.
func (l *Ledger) LevelInfo(rank domain.SeasonRank) (domain.LevelInfo, error) {
	current, err := l.levels.LevelForExperience(rank.Experience)
	if err != nil {
		return domain.LevelInfo{}, fmt.Errorf("level lookup: %w", err)
	}
	if current == nil {
		current, err = l.levels.LowestLevel()
		if err != nil {
			return domain.LevelInfo{}, fmt.Errorf("lowest level: %w", err)
		}
	}
	if current == nil {
		return domain.LevelInfo{
			Level:      rank.Level,
			Title:      fmt.Sprintf("Уровень %d", rank.Level),
			Category:   "legend",
			CurrentExp: rank.Experience,
		}, nil
	}

	info := domain.LevelInfo{
		Level:      current.Level,
		Title:      current.Title,
		Category:   current.Category,
		CurrentExp: rank.Experience,
	}

	next, err := l.levels.NextLevelAfter(current.Level)
	if err != nil {
		return domain.LevelInfo{}, fmt.Errorf("next level: %w", err)
	}
	if next == nil {
		// Top of the catalog
		info.Progress = 100
		info.NextLevelExp = rank.Experience
		return info, nil
	}

	span := next.MinExperience - current.MinExperience
	if span < 1 {
		span = 1
	}
	gained := rank.Experience - current.MinExperience
	if gained < 0 {
		gained = 0
	}
	progress := float64(gained) / float64(span) * 100
	if progress > 100 {
		progress = 100
	}

	info.NextLevelExp = next.MinExperience
	info.ExpInLevel = gained
	info.ExpToNext = span
	info.Progress = progress
	return info, nil
}

// ─── Rollover ───────────────────────────────────────────────────────────────

// EndedSeason pairs a retired season with its podium.
type EndedSeason struct {
	Season  domain.Season
	Winners []domain.SeasonRank
}

// Report describes what one rollover pass did.
type Report struct {
	Day     time.Time
	Ended   []EndedSeason
	Started []domain.Season
	Created *domain.Season
}

// monthThemes maps a calendar month to the new season's theme tag and
// base name.
var monthThemes = map[time.Month]struct{ Theme, Name string }{
	time.January:   {"winter", "Ледяное царство админов"},
	time.February:  {"winter", "Морозные сервера"},
	time.March:     {"spring", "Весеннее обновление"},
	time.April:     {"spring", "Цветущие патчи"},
	time.May:       {"spring", "Майские багфиксы"},
	time.June:      {"summer", "Летний апдейт"},
	time.July:      {"summer", "Пляжные бекапы"},
	time.August:    {"summer", "Солнечные сервера"},
	time.September: {"autumn", "Осенний рефакторинг"},
	time.October:   {"autumn", "Листопад фич"},
	time.November:  {"autumn", "Туманные деплои"},
	time.December:  {"winter", "Новогодние сбои"},
}

// Rollover is the idempotent daily pass: retire expired seasons
// (podium awards first), activate seasons whose start has arrived, and
// create a themed season when none is active. Failures on one season
// never block the others.
func (l *Ledger) Rollover(day time.Time) (*Report, error) {
	report := &Report{Day: day}

	active, err := l.seasons.ActiveSeasons()
	if err != nil {
		return nil, fmt.Errorf("list active seasons: %w", err)
	}

	for _, s := range active {
		if !s.ExpiredBy(day) {
			continue
		}
		winners := l.awardPodium(s, day)
		s.Active = false
		if err := l.seasons.UpdateSeason(&s); err != nil {
			l.log.Error("deactivate season failed",
				zap.String("season", s.Name), zap.Error(err))
			continue
		}
		l.log.Info("season ended",
			zap.String("season", s.Name), zap.Int("winners", len(winners)))
		report.Ended = append(report.Ended, EndedSeason{Season: s, Winners: winners})
	}

	pending, err := l.seasons.SeasonsStartingBy(day)
	if err != nil {
		l.log.Error("list pending seasons failed", zap.Error(err))
	} else {
		for _, s := range pending {
			s.Active = true
			if err := l.seasons.UpdateSeason(&s); err != nil {
				l.log.Error("activate season failed",
					zap.String("season", s.Name), zap.Error(err))
				continue
			}
			l.log.Info("season started", zap.String("season", s.Name))
			report.Started = append(report.Started, s)
		}
	}

	remaining, err := l.seasons.ActiveSeasons()
	if err != nil {
		return report, fmt.Errorf("recheck active seasons: %w", err)
	}
	if len(remaining) == 0 {
		created, err := l.createSeason(day)
		if err != nil {
			return report, fmt.Errorf("create season: %w", err)
		}
		l.log.Info("season created", zap.String("season", created.Name))
		report.Created = created
	}

	return report, nil
}

// awardPodium grants the tiered season achievements to the top three
// ranks. An empty rank table is a valid zero-winner outcome.
func (l *Ledger) awardPodium(s domain.Season, day time.Time) []domain.SeasonRank {
	winners, err := l.ranks.TopRanks(s.ID, len(achievement.SeasonAwards))
	if err != nil {
		l.log.Error("podium query failed",
			zap.String("season", s.Name), zap.Error(err))
		return nil
	}
	if len(winners) == 0 {
		return nil
	}

	grants := make([]domain.Achievement, 0, len(winners))
	for i, w := range winners {
		grants = append(grants, domain.Achievement{
			UserID:     w.UserID,
			Username:   w.Username,
			Label:      achievement.SeasonAwards[i],
			AchievedAt: day,
		})
	}
	if err := l.grants.InsertAchievements(grants); err != nil {
		l.log.Error("podium grants failed",
			zap.String("season", s.Name), zap.Error(err))
	}
	return winners
}

func (l *Ledger) createSeason(day time.Time) (*domain.Season, error) {
	theme, ok := monthThemes[day.Month()]
	if !ok {
		theme = struct{ Theme, Name string }{"winter", "Новый сезон"}
	}
	s := &domain.Season{
		Name:      fmt.Sprintf("%s %d", theme.Name, day.Year()),
		Theme:     theme.Theme,
		StartDate: domain.DayStart(day),
		EndDate:   domain.DayStart(day).AddDate(0, domain.DefaultSeasonLength, 0),
		Active:    true,
	}
	if err := l.seasons.InsertSeason(s); err != nil {
		return nil, err
	}
	return s, nil
}
