package boundary

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

// Request is the envelope accepted by Handle.
type Request struct {
	Schema     json.RawMessage `json:"schema"`
	Instance   json.RawMessage `json:"instance"`
	MaskValues *bool           `json:"maskValues,omitempty"`
}

// Response is the result of one validation. Issues is empty when Valid.
type Response struct {
	Valid  bool               `json:"valid"`
	Issues diagnostics.Issues `json:"issues,omitempty"`
}

// ErrorResponse carries a deserialization error back to the host.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeRequest parses the request envelope. The schema and instance are
// left undecoded.
func DecodeRequest(data []byte) (*Request, error) {
	if _, err := decodeJSON(data); err != nil {
		return nil, &DeserializationError{Subject: SubjectRequest, Err: err}
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &DeserializationError{Subject: SubjectRequest, Err: err}
	}
	if req.Schema == nil {
		return nil, &DeserializationError{Subject: SubjectSchema, Err: &MissingFieldError{Field: "schema"}}
	}
	if req.Instance == nil {
		return nil, &DeserializationError{Subject: SubjectInstance, Err: &MissingFieldError{Field: "instance"}}
	}
	return &req, nil
}

// InstanceRequest is the envelope used to validate against a schema that was
// compiled earlier.
type InstanceRequest struct {
	Instance   json.RawMessage `json:"instance"`
	MaskValues *bool           `json:"maskValues,omitempty"`
}

// DecodeInstanceRequest parses an InstanceRequest and decodes its instance.
func DecodeInstanceRequest(data []byte) (*InstanceRequest, any, error) {
	if _, err := decodeJSON(data); err != nil {
		return nil, nil, &DeserializationError{Subject: SubjectRequest, Err: err}
	}
	var req InstanceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, nil, &DeserializationError{Subject: SubjectRequest, Err: err}
	}
	if req.Instance == nil {
		return nil, nil, &DeserializationError{Subject: SubjectInstance, Err: &MissingFieldError{Field: "instance"}}
	}
	instance, err := DecodeJSON(SubjectInstance, req.Instance)
	if err != nil {
		return nil, nil, err
	}
	return &req, instance, nil
}

// Documents decodes the schema and the instance.
func (r *Request) Documents() (schema, instance any, err error) {
	if schema, err = DecodeJSON(SubjectSchema, r.Schema); err != nil {
		return nil, nil, err
	}
	if instance, err = DecodeJSON(SubjectInstance, r.Instance); err != nil {
		return nil, nil, err
	}
	return schema, instance, nil
}

// Options appends the request's own settings to base.
func (r *Request) Options(base ...diagnostics.Option) []diagnostics.Option {
	opts := append([]diagnostics.Option(nil), base...)
	if r.MaskValues != nil {
		opts = append(opts, diagnostics.WithMaskValues(*r.MaskValues))
	}
	return opts
}

// NewResponse turns the result of a validation into a Response. Errors
// other than diagnostics.Issues are returned unchanged.
func NewResponse(err error) (*Response, error) {
	if err == nil {
		return &Response{Valid: true}, nil
	}
	iss, ok := diagnostics.AsIssues(err)
	if !ok {
		return nil, err
	}
	return &Response{Valid: false, Issues: iss}, nil
}

// EncodeResponse encodes the Response for err.
func EncodeResponse(err error) ([]byte, error) {
	resp, err := NewResponse(err)
	if err != nil {
		return nil, err
	}
	return json.MarshalNoEscape(resp)
}

// EncodeError encodes err as an ErrorResponse.
func EncodeError(err error) []byte {
	data, mErr := json.MarshalNoEscape(ErrorResponse{Error: err.Error()})
	if mErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return data
}

// Handle validates the instance of an encoded Request against its schema and
// returns the encoded Response. A request that cannot be decoded yields a
// *DeserializationError and no response.
func Handle(ctx context.Context, data []byte, opts ...diagnostics.Option) ([]byte, error) {
	req, err := DecodeRequest(data)
	if err != nil {
		return nil, err
	}
	schema, instance, err := req.Documents()
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return EncodeResponse(diagnostics.Validate(schema, instance, req.Options(opts...)...))
}
