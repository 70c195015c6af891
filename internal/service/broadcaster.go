package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToStaff(msgType string, payload interface{})
}

// Staff feed message types
const (
	MsgComplaintFiled   = "complaint_filed"
	MsgComplaintUpdated = "complaint_updated"
)

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToStaff(string, interface{}) {}
