package menu

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Тексты кнопок главного меню.
const (
	Records  = "📋 Записи"
	Students = "👨‍🎓 Студенты"
	Courses  = "📚 Курсы"
	Editor   = "✏️ Добавить / изменить"
	Delete   = "🗑 Удаление"
	Export   = "📥 Экспорт записей"
)

// AdminMenu: постоянная клавиатура консоли.
func AdminMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(Records),
			tgbotapi.NewKeyboardButton(Students),
			tgbotapi.NewKeyboardButton(Courses),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(Editor),
			tgbotapi.NewKeyboardButton(Delete),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(Export),
		),
	)
}
