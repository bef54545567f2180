package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// bindEnvelope binds a JSON body sent either flat or wrapped under one of
// keys (e.g. {"company": {...}}) and validates obj's binding tags
func bindEnvelope(c *gin.Context, obj any, keys ...string) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return binding.JSON.BindBody(unwrapEnvelope(body, keys), obj)
}

// unwrapEnvelope returns the first object found under keys, or body
func unwrapEnvelope(body []byte, keys []string) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	for _, key := range keys {
		inner := bytes.TrimSpace(fields[key])
		if len(inner) > 0 && inner[0] == '{' {
			return inner
		}
	}
	return body
}
