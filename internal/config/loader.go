package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in order of precedence:
// BOT_* environment variables, the YAML file at path, built-in defaults.
// A missing config file is not an error; missing feature credentials are not
// an error either (the dependent feature is disabled by the caller).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults and env variables still apply.
	if _, statErr := os.Stat(path); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("subscription.price", DefaultSubscriptionPrice)
	v.SetDefault("subscription.currency", DefaultSubscriptionCurrency)
	v.SetDefault("subscription.days", DefaultSubscriptionDays)
	v.SetDefault("subscription.daily_ai_limit", DefaultDailyAILimit)

	v.SetDefault("supabase.subscribers_table", DefaultSubscribersTable)
	v.SetDefault("supabase.materials_table", DefaultMaterialsTable)
	v.SetDefault("supabase.timeout", DefaultStoreTimeout)

	v.SetDefault("yookassa.base_url", DefaultYooKassaBaseURL)
	v.SetDefault("yookassa.timeout", DefaultYooKassaTimeout)

	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.instruction", DefaultGeminiInstruction)
	v.SetDefault("gemini.timeout", DefaultGeminiTimeout)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelay)

	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.listen_addr", DefaultWebhookListenAddr)
	v.SetDefault("webhook.path", DefaultWebhookPath)

	v.SetDefault("scheduler.tasks", DefaultSchedulerTasks)

	v.SetDefault("keywords.files", DefaultFilesKeywords)
	v.SetDefault("keywords.join", DefaultJoinKeywords)
	v.SetDefault("keywords.engagement", DefaultEngagementKeywords)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.group_info", DefaultMessages.GroupInfo)
	v.SetDefault("messages.files_info", DefaultMessages.FilesInfo)
	v.SetDefault("messages.engagement", DefaultMessages.Engagement)
	v.SetDefault("messages.payment_prompt", DefaultMessages.PaymentPrompt)
	v.SetDefault("messages.payment_error", DefaultMessages.PaymentError)
	v.SetDefault("messages.payment_pending", DefaultMessages.PaymentPending)
	v.SetDefault("messages.payment_success", DefaultMessages.PaymentSuccess)
	v.SetDefault("messages.activation_error", DefaultMessages.ActivationError)
	v.SetDefault("messages.invite_error", DefaultMessages.InviteError)
	v.SetDefault("messages.need_subscription", DefaultMessages.NeedSubscription)
	v.SetDefault("messages.limit_exceeded", DefaultMessages.LimitExceeded)
	v.SetDefault("messages.ai_error", DefaultMessages.AIError)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.provide_question", DefaultMessages.ProvideQuestion)
	v.SetDefault("messages.provide_query", DefaultMessages.ProvideQuery)
	v.SetDefault("messages.no_materials", DefaultMessages.NoMaterials)
	v.SetDefault("messages.feature_disabled", DefaultMessages.FeatureDisabled)
}
