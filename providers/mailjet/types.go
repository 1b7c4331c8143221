package mailjet

// sendRequest ist der Body für POST /send der Mailjet Send API v3.1.
type sendRequest struct {
	Messages []message `json:"Messages"`
}

type address struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type message struct {
	From     address   `json:"From"`
	To       []address `json:"To"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart,omitempty"`
	HTMLPart string    `json:"HTMLPart,omitempty"`
}

// sendResponse enthält nur die Felder, die wir auswerten.
type sendResponse struct {
	Messages []struct {
		Status string `json:"Status"`
		Errors []struct {
			ErrorMessage string `json:"ErrorMessage"`
		} `json:"Errors"`
	} `json:"Messages"`
}
