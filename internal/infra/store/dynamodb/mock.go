package dynamodb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const mockTargetPrefix = "DynamoDB_20120810."

// MockTable is an in-memory fake of the DynamoDB JSON protocol, covering the
// GetItem/PutItem/UpdateItem/DeleteItem/Scan subset the Store issues.
type MockTable struct {
	mu       sync.Mutex
	table    string
	pageSize int
	items    map[string]map[string]json.RawMessage
	failures map[string]string
	calls    map[string]int
}

// NewMockForTests returns a Store backed by an in-memory fake HTTP transport.
// A positive pageSize makes Scan return that many items per page so
// continuation handling is exercised.
func NewMockForTests(table string, pageSize int) (*Store, *MockTable) {
	mock := &MockTable{
		table:    table,
		pageSize: pageSize,
		items:    make(map[string]map[string]json.RawMessage),
		failures: make(map[string]string),
		calls:    make(map[string]int),
	}
	cfg := aws.Config{
		Region:           DefaultRegion,
		Credentials:      credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
		RetryMaxAttempts: 1,
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.HTTPClient = &http.Client{Transport: mock}
		o.BaseEndpoint = aws.String("https://mock.dynamodb.local")
	})
	return NewWithClient(client, table, 0), mock
}

// FailWith makes every subsequent call of operation (e.g. "PutItem") fail
// with a ValidationException carrying message.
func (m *MockTable) FailWith(operation, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[operation] = message
}

// Calls reports how many times operation reached the fake.
func (m *MockTable) Calls(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[operation]
}

type mockRequest struct {
	TableName                 string
	Key                       map[string]json.RawMessage
	Item                      map[string]json.RawMessage
	UpdateExpression          string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]json.RawMessage
	ReturnValues              string
	ExclusiveStartKey         map[string]json.RawMessage
	Limit                     int
}

type stringAttr struct {
	S *string `json:"S"`
}

func (m *MockTable) RoundTrip(req *http.Request) (*http.Response, error) { //nolint:cyclop
	op := strings.TrimPrefix(req.Header.Get("X-Amz-Target"), mockTargetPrefix)
	var in mockRequest
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &in); err != nil {
			return mockError("SerializationException", err.Error()), nil
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if msg, ok := m.failures[op]; ok {
		return mockError("ValidationException", msg), nil
	}
	if in.TableName != m.table {
		return mockError("ResourceNotFoundException", "Requested resource not found"), nil
	}

	switch op {
	case "GetItem":
		key, err := keyFromWire(in.Key)
		if err != nil {
			return mockError("ValidationException", err.Error()), nil
		}
		if it, ok := m.items[key]; ok {
			return mockOK(map[string]any{"Item": it}), nil
		}
		return mockOK(map[string]any{}), nil
	case "PutItem":
		key, err := keyFromWire(in.Item)
		if err != nil {
			return mockError("ValidationException", err.Error()), nil
		}
		m.items[key] = in.Item
		return mockOK(map[string]any{}), nil
	case "UpdateItem":
		key, err := keyFromWire(in.Key)
		if err != nil {
			return mockError("ValidationException", err.Error()), nil
		}
		parts := strings.Fields(in.UpdateExpression)
		if len(parts) != 4 || !strings.EqualFold(parts[0], "SET") || parts[2] != "=" {
			return mockError("ValidationException", "unsupported update expression: "+in.UpdateExpression), nil
		}
		field, ok := in.ExpressionAttributeNames[parts[1]]
		if !ok {
			return mockError("ValidationException", "unbound attribute name "+parts[1]), nil
		}
		value, ok := in.ExpressionAttributeValues[parts[3]]
		if !ok {
			return mockError("ValidationException", "unbound attribute value "+parts[3]), nil
		}
		it, exists := m.items[key]
		if !exists {
			it = map[string]json.RawMessage{"productid": in.Key["productid"]}
			m.items[key] = it
		}
		it[field] = value
		return mockOK(map[string]any{"Attributes": map[string]json.RawMessage{field: value}}), nil
	case "DeleteItem":
		key, err := keyFromWire(in.Key)
		if err != nil {
			return mockError("ValidationException", err.Error()), nil
		}
		prev, ok := m.items[key]
		delete(m.items, key)
		if ok && in.ReturnValues == "ALL_OLD" {
			return mockOK(map[string]any{"Attributes": prev}), nil
		}
		return mockOK(map[string]any{}), nil
	case "Scan":
		return m.scan(in), nil
	}
	return mockError("UnknownOperationException", "unsupported operation "+op), nil
}

func (m *MockTable) scan(in mockRequest) *http.Response {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	start := 0
	if len(in.ExclusiveStartKey) > 0 {
		after, err := keyFromWire(in.ExclusiveStartKey)
		if err != nil {
			return mockError("ValidationException", err.Error())
		}
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	limit := m.pageSize
	if in.Limit > 0 && (limit == 0 || in.Limit < limit) {
		limit = in.Limit
	}
	end := len(keys)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	items := make([]map[string]json.RawMessage, 0, end-start)
	for _, k := range keys[start:end] {
		items = append(items, m.items[k])
	}
	out := map[string]any{"Items": items, "Count": len(items), "ScannedCount": len(items)}
	if end < len(keys) && end > start {
		out["LastEvaluatedKey"] = map[string]json.RawMessage{"productid": m.items[keys[end-1]]["productid"]}
	}
	return mockOK(out)
}

func keyFromWire(attrs map[string]json.RawMessage) (string, error) {
	raw, ok := attrs["productid"]
	if !ok {
		return "", fmt.Errorf("One or more parameter values were invalid: Missing the key productid in the item")
	}
	var s stringAttr
	if err := json.Unmarshal(raw, &s); err != nil || s.S == nil {
		return "", fmt.Errorf("One or more parameter values were invalid: Type mismatch for key productid")
	}
	if *s.S == "" {
		return "", fmt.Errorf("One or more parameter values are not valid. The AttributeValue for a key attribute cannot contain an empty string value. Key: productid")
	}
	return *s.S, nil
}

func mockOK(payload any) *http.Response {
	b, _ := json.Marshal(payload)
	return mockResponse(http.StatusOK, b)
}

func mockError(code, message string) *http.Response {
	b, _ := json.Marshal(map[string]string{
		"__type":  "com.amazonaws.dynamodb.v20120810#" + code,
		"message": message,
	})
	return mockResponse(http.StatusBadRequest, b)
}

func mockResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Header:        http.Header{"Content-Type": {"application/x-amz-json-1.0"}},
	}
}
