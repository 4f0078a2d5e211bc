package domain

import "time"

// MissedChatTimer is the configurable wait before an unanswered chat
// counts as missed. A zero timer disables missed-chat detection.
type MissedChatTimer struct {
	Hours   int
	Minutes int
	Seconds int
}

// Duration converts the timer to a time.Duration.
func (t MissedChatTimer) Duration() time.Duration {
	return time.Duration(t.Hours)*time.Hour +
		time.Duration(t.Minutes)*time.Minute +
		time.Duration(t.Seconds)*time.Second
}

// CustomMessages holds the two greeting slots shown by the widget.
type CustomMessages struct {
	Message1 string
	Message2 string
}

// IntroductionForm holds labels and placeholders for the widget's
// intro form fields.
type IntroductionForm struct {
	NameLabel        string
	NamePlaceholder  string
	PhoneLabel       string
	PhonePlaceholder string
	EmailLabel       string
	EmailPlaceholder string
}

// ChatbotSettings is the singleton widget configuration record. At
// most one row exists; absence means "use defaults" and a default row
// is materialized on first access.
type ChatbotSettings struct {
	HeaderColor      string
	BackgroundColor  string
	CustomMessages   CustomMessages
	IntroductionForm IntroductionForm
	WelcomeMessage   string
	MissedChatTimer  MissedChatTimer
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultChatbotSettings returns the factory configuration.
func DefaultChatbotSettings() *ChatbotSettings {
	return &ChatbotSettings{
		HeaderColor:     "#334755",
		BackgroundColor: "#EEEEEE",
		CustomMessages: CustomMessages{
			Message1: "How can I help you?",
			Message2: "Ask me anything!",
		},
		IntroductionForm: IntroductionForm{
			NameLabel:        "Your name",
			NamePlaceholder:  "Your name",
			PhoneLabel:       "Your Phone",
			PhonePlaceholder: "+1 (000) 000-0000",
			EmailLabel:       "Your Email",
			EmailPlaceholder: "example@gmail.com",
		},
		WelcomeMessage: "👋 Want to chat about Hubly? I'm a chatbot here to help you find your way.",
		MissedChatTimer: MissedChatTimer{
			Hours:   0,
			Minutes: 10,
			Seconds: 0,
		},
	}
}
