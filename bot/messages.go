package bot

const (
	// GreetingMessage is sent in reply to /start.
	GreetingMessage = "Привет!\nЯ помощник Сбера по вкладам!\nЗадай мне любой вопрос по вкладам в Сбере. Я постараюсь на него ответить.\nДля сброса контекста используй команды /start или /clear\n"

	// ClearedMessage is sent in reply to /clear.
	ClearedMessage = "Контекст сброшен."

	// UnknownCommandMessage is sent for any other slash command.
	UnknownCommandMessage = "Извини, я не понимаю эту команду.\nДля сброса контекста используй команды /start или /clear"
)
