// Package flash carries one-shot messages across a redirect in a cookie.
// A message set during one request is rendered on the next page load and
// then discarded.
package flash

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const (
	cookieName = "sg_flash"
	contextKey = "flashMessages"
)

// Message levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
)

// Message is a single user-visible notice.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Add appends a message to the outgoing flash cookie.
func Add(c *gin.Context, level, text string) {
	var messages []Message
	if pending, ok := c.Get(contextKey); ok {
		messages = pending.([]Message)
	}
	messages = append(messages, Message{Level: level, Text: text})
	c.Set(contextKey, messages)

	data, err := json.Marshal(messages)
	if err != nil {
		return
	}

	c.SetCookie(cookieName, base64.URLEncoding.EncodeToString(data), 300, "/", "", false, true)
}

// Warning adds a warning-level message.
func Warning(c *gin.Context, text string) {
	Add(c, LevelWarning, text)
}

// Pop returns messages set by a previous request and clears the cookie.
func Pop(c *gin.Context) []Message {
	cookie, err := c.Request.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(cookieName, "", -1, "/", "", false, true)

	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil
	}
	return messages
}
