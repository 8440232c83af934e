// Package config manages application configuration from config.yaml,
// BOT_-prefixed environment variables, and default values.
package config

import (
	"time"
)

// Config defines all configuration sections for the bot. Feature sections
// (Supabase, YooKassa, Gemini, the group id) may be left empty: the dependent
// feature is disabled at startup instead of failing the process.
type Config struct {
	Log          LogConfig          `mapstructure:"log"`
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Supabase     SupabaseConfig     `mapstructure:"supabase"`
	YooKassa     YooKassaConfig     `mapstructure:"yookassa"`
	Gemini       GeminiConfig       `mapstructure:"gemini"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Keywords     KeywordsConfig     `mapstructure:"keywords"`
	Messages     MessagesConfig     `mapstructure:"messages"`
}

// LogConfig controls logger level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and group/admin identity.
type TelegramConfig struct {
	Token        string  `mapstructure:"token"`
	AdminIDs     []int64 `mapstructure:"admin_ids"`
	AdminContact string  `mapstructure:"admin_contact"`
	GroupID      int64   `mapstructure:"group_id"`

	// BotInfo is populated at runtime from GetMe, not from the config file.
	BotInfo BotInfo `mapstructure:"-"`
}

// BotInfo carries the bot's own identity as reported by the platform.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// IsAdmin reports whether the given user id is in the admin list.
func (c TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SubscriptionConfig defines pricing and entitlement parameters.
type SubscriptionConfig struct {
	Price      int    `mapstructure:"price"          validate:"min=1"`
	Currency   string `mapstructure:"currency"       validate:"required"`
	Days       int    `mapstructure:"days"           validate:"min=1"`
	DailyLimit int    `mapstructure:"daily_ai_limit" validate:"min=1"`
}

// SupabaseConfig holds the remote table store endpoint and credentials.
type SupabaseConfig struct {
	URL              string        `mapstructure:"url" validate:"omitempty,url"`
	ServiceKey       string        `mapstructure:"service_key"`
	SubscribersTable string        `mapstructure:"subscribers_table" validate:"required"`
	MaterialsTable   string        `mapstructure:"materials_table"   validate:"required"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"min=1s,max=1m"`
}

// Enabled reports whether the table store can be used.
func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.ServiceKey != ""
}

// YooKassaConfig holds payment gateway credentials.
type YooKassaConfig struct {
	ShopID    string        `mapstructure:"shop_id"`
	SecretKey string        `mapstructure:"secret_key"`
	BaseURL   string        `mapstructure:"base_url"   validate:"required,url"`
	ReturnURL string        `mapstructure:"return_url" validate:"omitempty,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=1s,max=1m"`
}

// Enabled reports whether checkout sessions can be created.
func (c YooKassaConfig) Enabled() bool {
	return c.ShopID != "" && c.SecretKey != ""
}

// GeminiConfig holds the AI consultant settings.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	ModelName         string        `mapstructure:"model_name" validate:"required"`
	Temperature       float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Instruction       string        `mapstructure:"instruction" validate:"required"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"min=1s,max=10m"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"min=0,max=5"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=1,max=60"`
}

// Enabled reports whether the AI consultant can be used.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// WebhookConfig controls the payment webhook HTTP server.
type WebhookConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`
	Path       string `mapstructure:"path" validate:"required,startswith=/"`
}

// SchedulerConfig maps task names to their cron schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task with a cron expression
// (six fields, seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// KeywordsConfig holds the intent keyword lists. Priority between the lists
// is fixed (files, then join, then engagement); the contents are loadable.
type KeywordsConfig struct {
	Files      []string `mapstructure:"files"`
	Join       []string `mapstructure:"join"`
	Engagement []string `mapstructure:"engagement"`
}

// MessagesConfig holds every user-facing message template.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"`
	GroupInfo        string `mapstructure:"group_info"`
	FilesInfo        string `mapstructure:"files_info"`
	Engagement       string `mapstructure:"engagement"`
	PaymentPrompt    string `mapstructure:"payment_prompt"`
	PaymentError     string `mapstructure:"payment_error"`
	PaymentPending   string `mapstructure:"payment_pending"`
	PaymentSuccess   string `mapstructure:"payment_success"`
	ActivationError  string `mapstructure:"activation_error"`
	InviteError      string `mapstructure:"invite_error"`
	NeedSubscription string `mapstructure:"need_subscription"`
	LimitExceeded    string `mapstructure:"limit_exceeded"`
	AIError          string `mapstructure:"ai_error"`
	GeneralError     string `mapstructure:"general_error"`
	NotAuthorized    string `mapstructure:"not_authorized"`
	ProvideQuestion  string `mapstructure:"provide_question"`
	ProvideQuery     string `mapstructure:"provide_query"`
	NoMaterials      string `mapstructure:"no_materials"`
	FeatureDisabled  string `mapstructure:"feature_disabled"`
}
