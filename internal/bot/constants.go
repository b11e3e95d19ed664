package bot

// Callback data values for the main menu and admin actions.
const (
	callbackBuySubscription = "buy_subscription"
	callbackFAQ             = "faq"
	callbackSupport         = "support"
	callbackBackToMenu      = "back_to_menu"

	// Both prefixes mean "admin confirms fulfillment"; they differ only
	// in the identifier carried.
	callbackOrderReadyPrefix = "order_ready_"
	callbackDonePrefix       = "done_"
)

const (
	welcomeText = "🎵 Добро пожаловать в Blesk - магазин подписок Spotify!\n\n" +
		"Здесь вы можете приобрести доступ к Spotify Family всего за %d рублей в месяц.\n\n" +
		"Выберите действие:"

	mainMenuText = "Главное меню:"

	productText = "📦 Товар: Spotify Family (1 месяц)\n" +
		"💰 Цена: %d рублей\n\n" +
		"Нажмите кнопку ниже для оплаты через СБП:"

	paymentFailedText = "Ошибка при создании платежа. Попробуйте позже или свяжитесь с поддержкой."

	paymentPendingText = "⏳ Платёж ещё не подтверждён.\n\n" +
		"Оплатите по ссылке выше — как только придёт подтверждение, я попрошу данные для активации."

	loginPromptText = "✅ Оплата успешно получена!\n\n" +
		"Теперь введите ваш логин от Spotify (email или имя пользователя):"

	loginEmptyText = "Логин не может быть пустым. Введите ваш логин от Spotify (email или имя пользователя):"

	passwordPromptText = "Теперь введите ваш пароль от Spotify:"

	passwordEmptyText = "Пароль не может быть пустым. Введите ваш пароль от Spotify:"

	credentialsReceivedText = "✅ Данные получены!\n\n" +
		"Ожидайте активации подписки. По готовности вам придет уведомление."

	activationPendingText = "⏳ Подписка ещё активируется.\n\n" +
		"По готовности вам придет уведомление."

	activatedText = "🟢 Ваша подписка Spotify Family активирована!\n\n" +
		"Можете пользоваться всеми преимуществами Premium на 30 дней.\n\n" +
		"Приятного прослушивания! 🎵"

	faqText = "❓ Частые вопросы (FAQ)\n\n" +
		"📌 Что такое Spotify Family?\n" +
		"Это семейная подписка Spotify Premium, которая позволяет слушать музыку без рекламы, " +
		"скачивать треки и наслаждаться высоким качеством звука.\n\n" +
		"📌 Как происходит активация?\n" +
		"После оплаты вы вводите логин и пароль от своего аккаунта Spotify, " +
		"и наш администратор добавляет вас в семейную подписку.\n\n" +
		"📌 Сколько времени занимает активация?\n" +
		"Обычно от 5 минут до нескольких часов. Вы получите уведомление, когда подписка будет активирована.\n\n" +
		"📌 На какой срок выдается подписка?\n" +
		"Подписка выдается на 1 месяц (30 дней) с момента активации.\n\n" +
		"📌 Что делать, если возникли проблемы?\n" +
		"Свяжитесь с нашей поддержкой через кнопку \"Поддержка\" в главном меню."

	supportText = "💬 Поддержка\n\n" +
		"Если у вас возникли вопросы или проблемы, напишите администратору."

	unauthorizedText = "У вас нет прав для выполнения этого действия."

	orderNotFoundText = "Заказ не найден."

	adminNewOrderText = "🔔 Новый заказ #%s\n\n" +
		"👤 Пользователь: %d\n" +
		"📧 Логин Spotify: %s\n" +
		"🔑 Пароль Spotify: %s\n\n" +
		"После добавления пользователя в семейную подписку, нажмите кнопку \"Готово\":"

	adminDoneConfirmText = "✅ Уведомление о готовности отправлено пользователю %d"

	adminUnresolvedText = "⚠️ Оплата без заказа!\n\n" +
		"Транзакция: %s\n" +
		"Payload: %s\n" +
		"Сумма: %d %s\n\n" +
		"Сессия не найдена, требуется ручная сверка."
)
