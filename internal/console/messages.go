package console

// Тексты уведомлений. Ошибки транспорта и сервера не различаются.
const (
	MsgLoadFailed   = "⚠️ Не удалось загрузить данные"
	MsgSaved        = "✅ Сохранено"
	MsgAddFailed    = "❌ Ошибка добавления"
	MsgSaveFailed   = "❌ Ошибка сохранения"
	MsgDeleted      = "✅ Удалено"
	MsgDeleteFailed = "❌ Ошибка удаления"
)
