package mail

type NotificationEmailData struct {
	Message string
	Link    string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	BaseURL  string
}
