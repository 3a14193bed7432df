package models

import "time"

type TrelloMember struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

type TrelloCardData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortLink string `json:"shortLink"`
	Closed    bool   `json:"closed"`
}

type TrelloBoardData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TrelloListData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TrelloAction struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"` // e.g., "createCard"
	Date          string       `json:"date"`
	MemberCreator TrelloMember `json:"memberCreator"`
	Data          struct {
		Card  TrelloCardData  `json:"card"`
		Board TrelloBoardData `json:"board"`
		List  TrelloListData  `json:"list"`
		Text  string          `json:"text"`
	} `json:"data"`
}

type TrelloWebhookPayload struct {
	Action TrelloAction    `json:"action"`
	Model  TrelloBoardData `json:"model"`
}

// Webhook is a Trello webhook this service registered, kept so shutdown and
// the CLI can clean up what startup created.
type Webhook struct {
	ID          string `gorm:"primaryKey"`
	BoardID     string
	CallbackURL string
	Description string
	CreatedAt   time.Time
}

// Delivery records one webhook POST received from Trello. The payload is not
// interpreted beyond the fields captured here.
type Delivery struct {
	ID         uint `gorm:"primaryKey"`
	ActionID   string
	ActionType string
	BoardID    string
	BoardName  string
	CardID     string
	CardName   string
	MemberName string
	Bytes      int
	ReceivedAt time.Time
}
