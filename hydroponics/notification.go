package hydroponics

const NotificationTopic = "notification"

// Notification is a plain text message for the operator chats of a device.
type Notification struct {
	Chats   []int64 `json:"chats"`
	Message string  `json:"message"`
}
