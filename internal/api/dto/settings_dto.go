package dto

// CustomMessagesPayload mirrors the two greeting slots.
type CustomMessagesPayload struct {
	Message1 *string `json:"message1"`
	Message2 *string `json:"message2"`
}

// IntroductionFormPayload mirrors the widget intro-form labels.
type IntroductionFormPayload struct {
	NameLabel        *string `json:"nameLabel"`
	NamePlaceholder  *string `json:"namePlaceholder"`
	PhoneLabel       *string `json:"phoneLabel"`
	PhonePlaceholder *string `json:"phonePlaceholder"`
	EmailLabel       *string `json:"emailLabel"`
	EmailPlaceholder *string `json:"emailPlaceholder"`
}

// MissedChatTimerPayload mirrors the timer fields.
type MissedChatTimerPayload struct {
	Hours   *int `json:"hours"`
	Minutes *int `json:"minutes"`
	Seconds *int `json:"seconds"`
}

// UpdateSettingsRequest is a partial settings update. Absent fields
// keep their current value; empty strings are applied as given.
type UpdateSettingsRequest struct {
	HeaderColor      *string                  `json:"headerColor"`
	BackgroundColor  *string                  `json:"backgroundColor"`
	CustomMessages   *CustomMessagesPayload   `json:"customMessages"`
	IntroductionForm *IntroductionFormPayload `json:"introductionForm"`
	WelcomeMessage   *string                  `json:"welcomeMessage"`
	MissedChatTimer  *MissedChatTimerPayload  `json:"missedChatTimer"`
}

// SettingsResponse is the full settings record.
type SettingsResponse struct {
	HeaderColor     string `json:"headerColor"`
	BackgroundColor string `json:"backgroundColor"`
	CustomMessages  struct {
		Message1 string `json:"message1"`
		Message2 string `json:"message2"`
	} `json:"customMessages"`
	IntroductionForm struct {
		NameLabel        string `json:"nameLabel"`
		NamePlaceholder  string `json:"namePlaceholder"`
		PhoneLabel       string `json:"phoneLabel"`
		PhonePlaceholder string `json:"phonePlaceholder"`
		EmailLabel       string `json:"emailLabel"`
		EmailPlaceholder string `json:"emailPlaceholder"`
	} `json:"introductionForm"`
	WelcomeMessage  string `json:"welcomeMessage"`
	MissedChatTimer struct {
		Hours   int `json:"hours"`
		Minutes int `json:"minutes"`
		Seconds int `json:"seconds"`
	} `json:"missedChatTimer"`
}
