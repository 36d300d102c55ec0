package season

import "github.com/cat-time-bot/cattime/internal/domain"

// DefaultLevelTitles is the built-in level ladder. Each level unlocks
// at (level-1)*1000 experience; gaps above 25 mark long-haul goals.
var DefaultLevelTitles = buildTitles([]struct {
	level    int
	title    string
	category string
}{
	{1, "Пользователь, который 'просто посмотреть'", "beginner"},
	{2, "Мастер перезагрузки роутера", "beginner"},
	{3, "Специалист по нажатию Ctrl+Alt+Del", "beginner"},
	{4, "Админ кофейной машины", "beginner"},
	{5, "Младший повелитель мышек", "beginner"},
	{6, "Сисадмин-стажёр (знает, где кнопка Power)", "beginner"},
	{7, "Эксперт по 'а оно само сломалось'", "intermediate"},
	{8, "Магистр парольной политики 'qwerty123'", "intermediate"},
	{9, "Гуру создания ярлыков на рабочем столе", "intermediate"},
	{10, "Сеньор по установке Windows", "intermediate"},
	{11, "Хранитель резервных копий (которые никогда не восстанавливаются)", "intermediate"},
	{12, "Повелитель патч-кордов", "intermediate"},
	{13, "Мастер перепрошивки BIOS (со спичками)", "advanced"},
	{14, "Специалист по бесконечным обновлениям", "advanced"},
	{15, "Легенда серверной комнаты (и холодильника в ней)", "advanced"},
	{16, "Джедай кабельных трасс", "advanced"},
	{17, "Волшебник регистрации доменов", "advanced"},
	{18, "Маг диагностики методом 'выключить-включить'", "expert"},
	{19, "Архитектор виртуальных машин (которые всегда падают)", "expert"},
	{20, "Главный по облакам (и тучам проблем)", "expert"},
	{21, "Император бэкапов", "expert"},
	{22, "Верховный жрец Active Directory", "expert"},
	{23, "Ниндзя сетевой безопасности", "legend"},
	{24, "Создатель бесконечных скриптов", "legend"},
	{25, "Оракул багов и глюков", "legend"},
	{30, "Идеолог цифровой трансформации", "legend"},
	{50, "Бог серверной комнаты", "legend"},
	{100, "Бессмертный Архитектор Систем", "legend"},
})

func buildTitles(rows []struct {
	level    int
	title    string
	category string
}) []domain.LevelTitle {
	titles := make([]domain.LevelTitle, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, domain.LevelTitle{
			Level:         r.level,
			Title:         r.title,
			Category:      r.category,
			MinExperience: int64(r.level-1) * 1000,
		})
	}
	return titles
}

// SeedLevels loads the default ladder into the catalog. Safe to run
// repeatedly.
func SeedLevels(repo domain.LevelRepository) (int, error) {
	for _, t := range DefaultLevelTitles {
		if err := repo.UpsertLevel(t); err != nil {
			return 0, err
		}
	}
	return len(DefaultLevelTitles), nil
}
