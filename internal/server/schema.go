// internal/server/schema.go
package server

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const chatRequestSchema = `{
  "type": "object",
  "required": ["user_id", "message"],
  "properties": {
    "user_id": {
      "type": "string",
      "minLength": 1
    },
    "message": {
      "type": "string",
      "minLength": 1
    },
    "conversation_id": {
      "type": "string"
    }
  },
  "additionalProperties": false
}`

var chatSchema = gojsonschema.NewStringLoader(chatRequestSchema)

// validateChatRequest checks the raw request body against the chat schema
// before decoding. Returns a message listing every violation.
func validateChatRequest(body []byte) error {
	result, err := gojsonschema.Validate(chatSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	if result.Valid() {
		return nil
	}

	msg := "invalid request"
	for _, desc := range result.Errors() {
		msg += ": " + desc.String()
	}
	return fmt.Errorf("%s", msg)
}
