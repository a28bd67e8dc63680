package pubsub

import (
	"encoding/base64"
	"encoding/json"

	"reportshare/internal/domain/service"

	"github.com/pkg/errors"
)

// PushMessage represents the structure of a Pub/Sub push message.
// The local publisher produces it and the notifier worker consumes it.
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// DecodeReportEvent extracts the report event carried by a push message.
func (m *PushMessage) DecodeReportEvent() (*service.ReportEvent, error) {
	data, err := base64.StdEncoding.DecodeString(m.Message.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode message data")
	}

	var event service.ReportEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(err, "failed to parse report event")
	}
	if event.EventID == "" || event.Type == "" {
		return nil, errors.New("report event is missing its id or type")
	}

	return &event, nil
}

// eventAttributes returns the message attributes used for filtering and tracing.
func eventAttributes(event *service.ReportEvent) map[string]string {
	attributes := map[string]string{
		"event_id":   event.EventID,
		"event_type": event.Type,
		"subject_id": event.SubjectID,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}
