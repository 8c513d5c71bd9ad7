package amqp

import (
	"encoding/json"
	"time"
)

// ImportMessage tells the worker which import job to process. It carries only
// the ID; the worker loads the job details from the database.
type ImportMessage struct {
	ImportID  int64     `json:"importId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewImportMessage(importID int64) *ImportMessage {
	return &ImportMessage{
		ImportID:  importID,
		Timestamp: time.Now(),
	}
}

func (m *ImportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ImportMessageFromJSON(data []byte) (*ImportMessage, error) {
	var msg ImportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
