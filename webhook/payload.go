package webhook

import "encoding/json"

const objectBusinessAccount = "whatsapp_business_account"

type envelope struct {
	Object string            `json:"object"`
	Entry  []json.RawMessage `json:"entry"`
}

type entry struct {
	ID      string   `json:"id"`
	Changes []change `json:"changes"`
}

type change struct {
	Field string      `json:"field"`
	Value changeValue `json:"value"`
}

type changeValue struct {
	Metadata struct {
		PhoneNumberID string `json:"phone_number_id"`
	} `json:"metadata"`
	Statuses []messageStatus  `json:"statuses"`
	Messages []inboundMessage `json:"messages"`
}

type messageStatus struct {
	ID          string        `json:"id"`
	Status      string        `json:"status"`
	RecipientID string        `json:"recipient_id"`
	Timestamp   string        `json:"timestamp"`
	Errors      []statusError `json:"errors"`
}

type statusError struct {
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type inboundMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
}
