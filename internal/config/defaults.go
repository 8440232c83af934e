package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultSubscriptionPrice    = 500
	DefaultSubscriptionCurrency = "RUB"
	DefaultSubscriptionDays     = 30
	DefaultDailyAILimit         = 5

	DefaultSubscribersTable = "buddah_base_ai"
	DefaultMaterialsTable   = "materials"
	DefaultStoreTimeout     = 10 * time.Second

	DefaultYooKassaBaseURL = "https://api.yookassa.ru/v3"
	DefaultYooKassaTimeout = 10 * time.Second

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 0.7
	DefaultGeminiTimeout     = 2 * time.Minute
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 5

	DefaultWebhookListenAddr = ":8000"
	DefaultWebhookPath       = "/webhook/payment"
)

// DefaultGeminiInstruction is the fixed system instruction for the AI
// consultant.
const DefaultGeminiInstruction = `Ты AI-консультант сообщества Buddah Base - экспертов по нейросетям и автоматизации.

Отвечай кратко и по делу. Если есть материалы в контексте - обязательно на них ссылайся.
Если нет подходящих материалов - дай общий совет по теме AI/нейросетей/автоматизации.

Стиль: дружелюбный, экспертный, с эмодзи.`

// DefaultSchedulerTasks fires the quota reset at midnight and the expiry
// sweep an hour later. Cron expressions carry a seconds field.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"quota_reset":  {Enabled: true, Schedule: "0 0 0 * * *"},
	"expiry_sweep": {Enabled: true, Schedule: "0 0 1 * * *"},
}

// Default intent keyword lists. Order of the lists is fixed policy:
// file requests win over join intent, join intent wins over engagement.
var (
	DefaultFilesKeywords = []string{
		"файл", "файлик", "файлы", "материал", "материалы",
		"промпт", "промпты", "student id", "скинь", "скиньте",
		"дайте", "поделитесь", "скачать",
	}
	DefaultJoinKeywords = []string{
		"как вступить", "как попасть", "как войти", "как присоединиться",
		"хочу войти", "хочу вступить", "как получить доступ", "доступ",
		"подписка", "регистрация", "стоимость", "цена", "сколько стоит",
	}
	DefaultEngagementKeywords = []string{
		"интересно", "круто", "хочу", "расскажи", "подробнее",
		"как это работает", "veo", "нейросеть", "ai", "ии",
	}
)

// DefaultMessages holds the stock user-facing texts. Placeholders are
// fmt verbs; see the call sites for argument order.
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Добро пожаловать в Buddah Base AI!\n\n" +
		"Закрытое сообщество экспертов по нейросетям и автоматизации.\n\n" +
		"💳 Подписка открывает доступ к закрытой группе и AI-консультанту.\n" +
		"Вопросы — @%s",
	GroupInfo: "ℹ️ Buddah Base AI — закрытое сообщество по нейросетям.\n" +
		"Оформите подписку через /start. Вопросы — @%s",
	FilesInfo: "📁 Файлы, промпты и материалы доступны подписчикам в закрытой группе.\n" +
		"Оформите подписку через /start или напишите @%s",
	Engagement: "🔥 Рады интересу! Внутри — материалы, промпты и AI-консультант.\n" +
		"Оформите подписку через /start или напишите @%s",
	PaymentPrompt: "💳 Оплата подписки\n\n💰 Сумма: %d ₽\n⏱ Срок: %d дней\n\n" +
		"Нажмите кнопку ниже для перехода к оплате.\nПосле оплаты нажмите «Я оплатил» для проверки статуса.",
	PaymentError:   "❌ Ошибка создания платежа. Попробуйте позже.",
	PaymentPending: "⏳ Платеж еще не прошел.\n\nЕсли вы уже оплатили, подождите несколько минут и попробуйте снова.",
	PaymentSuccess: "✅ Оплата прошла успешно!\n\n⏱ Подписка активна на %d дней\n🤖 AI-вопросов в день: %d\n\n" +
		"🔗 Одноразовая ссылка для входа в группу (действует 1 час):\n%s",
	ActivationError:  "❌ Ошибка активации подписки. Обратитесь к поддержке.",
	InviteError:      "❌ Ошибка создания ссылки. Обратитесь к администратору @%s",
	NeedSubscription: "❌ Для использования AI-консультанта нужна активная подписка",
	LimitExceeded: "🤖 Лимит AI-вопросов исчерпан\n\nВы использовали все %d вопросов на сегодня.\n" +
		"Лимит обновится завтра в 00:00 МСК.",
	AIError:         "❌ Извините, произошла ошибка при обработке запроса",
	GeneralError:    "❌ Произошла ошибка. Попробуйте позже",
	NotAuthorized:   "❌ У вас нет прав доступа",
	ProvideQuestion: "ℹ️ Укажите вопрос после команды: /monk <вопрос>",
	ProvideQuery:    "ℹ️ Укажите запрос после команды: /materials <запрос>",
	NoMaterials:     "📚 Материалы по запросу не найдены",
	FeatureDisabled: "⚠️ Функция временно недоступна. Обратитесь к администратору.",
}
