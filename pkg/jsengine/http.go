package jsengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dop251/goja"
)

func jsonMarshal(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}

func jsonUnmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}

// HTTPResponse represents the response exposed to scripts.
type HTTPResponse struct {
	Status  int                    `json:"status"`
	Body    string                 `json:"body"`
	Headers map[string]string      `json:"headers"`
	Ok      bool                   `json:"ok"`
	JSON    map[string]interface{} `json:"json,omitempty"`
}

// httpModule returns the http object with get, post, put, delete methods,
// letting data-driven specs fetch fixtures or poke the backend directly.
func (e *Engine) httpModule() *goja.Object {
	obj := e.runtime.NewObject()

	for _, method := range []string{"get", "post", "put", "delete"} {
		method := method
		if err := obj.Set(method, func(call goja.FunctionCall) goja.Value {
			return e.doHTTPRequest(httpMethod(method), call)
		}); err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("failed to set http.%s: %v", method, err)))
		}
	}

	return obj
}

func httpMethod(method string) string {
	switch method {
	case "get":
		return http.MethodGet
	case "post":
		return http.MethodPost
	case "put":
		return http.MethodPut
	case "delete":
		return http.MethodDelete
	default:
		return method
	}
}

// doHTTPRequest performs an HTTP request and returns the response.
func (e *Engine) doHTTPRequest(method string, call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 1 {
		panic(e.runtime.NewTypeError(fmt.Sprintf("http.%s requires url", method)))
	}
	url := call.Arguments[0].String()

	var body io.Reader
	headers := map[string]string{}
	if len(call.Arguments) > 1 {
		opts, ok := call.Arguments[1].Export().(map[string]interface{})
		if ok {
			if b, ok := opts["body"].(string); ok {
				body = bytes.NewReader([]byte(b))
			} else if b, hasBody := opts["body"]; hasBody {
				data, err := json.Marshal(b)
				if err != nil {
					panic(e.runtime.NewTypeError(fmt.Sprintf("invalid body: %v", err)))
				}
				body = bytes.NewReader(data)
				headers["Content-Type"] = "application/json"
			}
			if h, ok := opts["headers"].(map[string]interface{}); ok {
				for k, v := range h {
					headers[k] = fmt.Sprintf("%v", v)
				}
			}
		}
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		panic(e.runtime.NewTypeError(fmt.Sprintf("invalid request: %v", err)))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		panic(e.runtime.NewTypeError(fmt.Sprintf("http.%s failed: %v", method, err)))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(e.runtime.NewTypeError(fmt.Sprintf("failed to read response: %v", err)))
	}

	result := HTTPResponse{
		Status:  resp.StatusCode,
		Body:    string(data),
		Headers: map[string]string{},
		Ok:      resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	for k := range resp.Header {
		result.Headers[k] = resp.Header.Get(k)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err == nil {
		result.JSON = parsed
	}

	return e.runtime.ToValue(result)
}
