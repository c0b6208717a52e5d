package diagnostics_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "maxLength": 10},
		"age": {"type": "number", "minimum": 18}
	},
	"required": ["name", "age"]
}`

const accountSchema = `{
	"type": "object",
	"properties": {
		"id": {
			"type": "string",
			"pattern": "^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$"
		},
		"username": {"type": "string", "minLength": 3},
		"status": {"type": "string", "enum": ["active", "inactive", "pending"]},
		"profile": {
			"type": "object",
			"properties": {
				"fullName": {"type": "string"},
				"age": {"type": "number", "minimum": 18}
			},
			"required": ["fullName"]
		},
		"tags": {
			"type": "array",
			"items": {"type": "string"},
			"minItems": 1,
			"uniqueItems": true
		}
	},
	"required": ["id", "username", "status", "tags"]
}`

func validate(t *testing.T, schema, instance string, opts ...diagnostics.Option) diagnostics.Issues {
	t.Helper()
	err := diagnostics.Validate(mustParse(t, schema), mustParse(t, instance), opts...)
	if err == nil {
		return nil
	}
	iss, ok := diagnostics.AsIssues(err)
	require.True(t, ok, "expected Issues, got %T", err)
	require.NotEmpty(t, iss)
	return iss
}

func TestValidate_Person(t *testing.T) {
	t.Parallel()

	t.Run("valid instance", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, validate(t, personSchema, `{"name": "John Doe", "age": 25}`))
	})

	t.Run("value below minimum", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, personSchema, `{"name": "Jane Doe", "age": 17}`)
		require.Len(t, iss, 1)
		assert.Equal(t, "/age", iss[0].Path)
		assert.Equal(t, diagnostics.CodeTooSmall, iss[0].Code)
		assert.Contains(t, iss[0].Message, "17 is less than the minimum of 18")
	})

	t.Run("missing required property", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, personSchema, `{"name": "John Doe"}`)
		require.Len(t, iss, 1)
		assert.Equal(t, "", iss[0].Path)
		assert.Equal(t, diagnostics.CodeMissingProperty, iss[0].Code)
		assert.Equal(t, `"age" is a required property`, iss[0].Message)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, personSchema, `{"name": "John Doe", "age": "25"}`)
		require.Len(t, iss, 1)
		assert.Equal(t, "/age", iss[0].Path)
		assert.Equal(t, diagnostics.CodeInvalidType, iss[0].Code)
		assert.Contains(t, iss[0].Message, `"25" is not of type "number"`)
	})

	t.Run("several failures", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, personSchema, `{"name": 123, "age": 17}`)
		require.Len(t, iss, 2)
		assert.Contains(t, iss, diagnostics.Issue{Path: "/name", Code: diagnostics.CodeInvalidType, Message: `123 is not of type "string"`})
		assert.Contains(t, iss, diagnostics.Issue{Path: "/age", Code: diagnostics.CodeTooSmall, Message: "17 is less than the minimum of 18"})
	})

	t.Run("every missing property is reported", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, personSchema, `{}`)
		require.Len(t, iss, 2)
		assert.Equal(t, `"name" is a required property`, iss[0].Message)
		assert.Equal(t, `"age" is a required property`, iss[1].Message)
	})

	t.Run("masked value", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, personSchema, `{"name": "ThisNameIsClearlyTooLong", "age": 25}`, diagnostics.WithMaskValues(true))
		require.Len(t, iss, 1)
		assert.Equal(t, "/name", iss[0].Path)
		assert.Equal(t, diagnostics.CodeTooLong, iss[0].Code)
		assert.NotContains(t, iss[0].Message, "ThisNameIsClearlyTooLong")
		assert.Contains(t, iss[0].Message, "value is longer than 10 characters")
	})
}

func TestValidate_SchemaCompilation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema any
	}{
		{name: "null schema", schema: nil},
		{name: "number schema", schema: 42},
		{name: "bad keyword value", schema: map[string]any{"type": "strin"}},
		{name: "unresolvable reference", schema: map[string]any{"$ref": "https://example.com/other.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := diagnostics.Validate(tt.schema, map[string]any{})
			iss, ok := diagnostics.AsIssues(err)
			require.True(t, ok)
			require.Len(t, iss, 1)
			assert.Equal(t, diagnostics.CompilationPath, iss[0].Path)
			assert.Equal(t, diagnostics.CodeInvalidSchema, iss[0].Code)
			assert.Contains(t, iss[0].Message, "Schema compilation error")
			assert.True(t, iss.CompilationFailed())
		})
	}
}

func TestValidate_Account(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		instance string
		wantPath string
		wantCode diagnostics.Code
		wantMsg  string
	}{
		{
			name: "nested property",
			instance: `{
				"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				"username": "testuser",
				"status": "active",
				"profile": {"fullName": "Test User", "age": 17},
				"tags": ["testing"]
			}`,
			wantPath: "/profile/age",
			wantCode: diagnostics.CodeTooSmall,
			wantMsg:  "17 is less than the minimum of 18",
		},
		{
			name: "pattern",
			instance: `{
				"id": "invalid-uuid-format",
				"username": "testuser",
				"status": "active",
				"tags": ["testing"]
			}`,
			wantPath: "/id",
			wantCode: diagnostics.CodePatternMismatch,
		},
		{
			name: "enum",
			instance: `{
				"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				"username": "testuser",
				"status": "archived",
				"tags": ["testing"]
			}`,
			wantPath: "/status",
			wantCode: diagnostics.CodeEnumMismatch,
			wantMsg:  `"archived" is not one of ["active","inactive","pending"]`,
		},
		{
			name: "duplicate items",
			instance: `{
				"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
				"username": "testuser",
				"status": "pending",
				"tags": ["rust", "wasm", "rust"]
			}`,
			wantPath: "/tags",
			wantCode: diagnostics.CodeDuplicateItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			iss := validate(t, accountSchema, tt.instance)
			require.Len(t, iss, 1)
			assert.Equal(t, tt.wantPath, iss[0].Path)
			assert.Equal(t, tt.wantCode, iss[0].Code)
			if tt.wantMsg != "" {
				assert.Contains(t, iss[0].Message, tt.wantMsg)
			}
		})
	}

	t.Run("valid instance", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, validate(t, accountSchema, `{
			"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
			"username": "testuser",
			"status": "active",
			"profile": {"fullName": "Test User", "age": 30},
			"tags": ["rust", "validate", "nodejs"]
		}`))
	})

	t.Run("many failures at once", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, accountSchema, `{
			"id": "invalid-uuid",
			"username": "a",
			"profile": {"age": 20},
			"tags": []
		}`)
		want := diagnostics.Issues{
			{Path: "", Code: diagnostics.CodeMissingProperty, Message: `"status" is a required property`},
			{Path: "/id", Code: diagnostics.CodePatternMismatch},
			{Path: "/profile", Code: diagnostics.CodeMissingProperty, Message: `"fullName" is a required property`},
			{Path: "/tags", Code: diagnostics.CodeTooFewItems, Message: "[] has fewer than 1 item"},
			{Path: "/username", Code: diagnostics.CodeTooShort, Message: `"a" is shorter than 3 characters`},
		}
		require.Len(t, iss, len(want))
		for i, w := range want {
			assert.Equal(t, w.Path, iss[i].Path, "issue %d", i)
			assert.Equal(t, w.Code, iss[i].Code, "issue %d", i)
			if w.Message != "" {
				assert.Equal(t, w.Message, iss[i].Message, "issue %d", i)
			}
		}
	})

	t.Run("masked value", func(t *testing.T) {
		t.Parallel()
		iss := validate(t, accountSchema, `{
			"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
			"username": "a",
			"status": "pending",
			"profile": {"fullName": "Masked User"},
			"tags": ["masked"]
		}`, diagnostics.WithMaskValues(true))
		require.Len(t, iss, 1)
		assert.Equal(t, "/username", iss[0].Path)
		assert.Equal(t, diagnostics.CodeTooShort, iss[0].Code)
		assert.NotContains(t, iss[0].Message, `"a"`)
		assert.Contains(t, iss[0].Message, "value is shorter than 3 characters")
	})
}

func TestValidate_Masking(t *testing.T) {
	t.Parallel()

	const secret = "hunter2secret"

	tests := []struct {
		name     string
		schema   string
		instance string
		code     diagnostics.Code
	}{
		{name: "type", schema: `{"type": "number"}`, instance: `"hunter2secret"`, code: diagnostics.CodeInvalidType},
		{name: "enum", schema: `{"enum": ["a", "b"]}`, instance: `"hunter2secret"`, code: diagnostics.CodeEnumMismatch},
		{name: "const", schema: `{"const": "a"}`, instance: `"hunter2secret"`, code: diagnostics.CodeConstMismatch},
		{name: "pattern", schema: `{"pattern": "^[0-9]+$"}`, instance: `"hunter2secret"`, code: diagnostics.CodePatternMismatch},
		{name: "format", schema: `{"format": "email"}`, instance: `"hunter2secret"`, code: diagnostics.CodeFormatMismatch},
		{name: "max length", schema: `{"maxLength": 2}`, instance: `"hunter2secret"`, code: diagnostics.CodeTooLong},
		{name: "not", schema: `{"not": {"type": "string"}}`, instance: `"hunter2secret"`, code: diagnostics.CodeNegatedSchemaMatch},
		{name: "any of", schema: `{"anyOf": [{"type": "number"}, {"type": "null"}]}`, instance: `"hunter2secret"`, code: diagnostics.CodeAnyOfMismatch},
		{name: "false schema", schema: `false`, instance: `"hunter2secret"`, code: diagnostics.CodeDisallowedValue},
		{
			name:     "additional property name",
			schema:   `{"additionalProperties": false}`,
			instance: `{"hunter2secret": 1}`,
			code:     diagnostics.CodeAdditionalProperties,
		},
		{
			name:     "unevaluated property name",
			schema:   `{"unevaluatedProperties": false}`,
			instance: `{"hunter2secret": 1}`,
			code:     diagnostics.CodeUnevaluatedProperties,
		},
		{
			name:     "property name",
			schema:   `{"propertyNames": {"maxLength": 3}}`,
			instance: `{"hunter2secret": 1}`,
			code:     diagnostics.CodeInvalidPropertyName,
		},
		{
			name:     "unique items",
			schema:   `{"uniqueItems": true}`,
			instance: `["hunter2secret", "hunter2secret"]`,
			code:     diagnostics.CodeDuplicateItems,
		},
		{
			name:     "additional items",
			schema:   `{"prefixItems": [{"type": "number"}], "items": false}`,
			instance: `[1, "hunter2secret"]`,
			code:     diagnostics.CodeDisallowedValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			masked := validate(t, tt.schema, tt.instance, diagnostics.WithMaskValues(true))
			require.Len(t, masked, 1)
			assert.Equal(t, tt.code, masked[0].Code)
			assert.NotContains(t, masked[0].Message, secret)

			plain := validate(t, tt.schema, tt.instance)
			require.Len(t, plain, 1)
			assert.Equal(t, masked[0].Path, plain[0].Path)
			assert.Equal(t, masked[0].Code, plain[0].Code)
			assert.Contains(t, plain[0].Message, secret)
		})
	}
}

func TestValidate_ItemPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schema   string
		instance string
		want     diagnostics.Issue
	}{
		{
			name:     "items after prefixItems",
			schema:   `{"prefixItems": [{"type": "number"}], "items": false}`,
			instance: `[1, "hunter2secret"]`,
			want:     diagnostics.Issue{Path: "/1", Code: diagnostics.CodeDisallowedValue, Message: `False schema does not allow "hunter2secret"`},
		},
		{
			name:     "additionalItems",
			schema:   `{"$schema": "http://json-schema.org/draft-07/schema#", "items": [{}], "additionalItems": {"maxLength": 2}}`,
			instance: `["a", "b", "secretvalue"]`,
			want:     diagnostics.Issue{Path: "/2", Code: diagnostics.CodeTooLong, Message: `"secretvalue" is longer than 2 characters`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			iss := validate(t, tt.schema, tt.instance)
			require.Len(t, iss, 1)
			assert.Equal(t, tt.want, iss[0])
		})
	}
}

func TestValidate_SchemaLiteralsSurviveMasking(t *testing.T) {
	t.Parallel()

	iss := validate(t, `{"enum": ["red", "green"]}`, `"blue"`, diagnostics.WithMaskValues(true))
	require.Len(t, iss, 1)
	assert.Equal(t, `value is not one of ["red","green"]`, iss[0].Message)
}

func TestValidate_PathEscaping(t *testing.T) {
	t.Parallel()

	iss := validate(t,
		`{"properties": {"a/b": {"type": "string"}, "c~d": {"type": "string"}}}`,
		`{"a/b": 1, "c~d": 2}`)
	require.Len(t, iss, 2)
	assert.Equal(t, "/a~1b", iss[0].Path)
	assert.Equal(t, "/c~0d", iss[1].Path)
}

func TestValidate_Options(t *testing.T) {
	t.Parallel()

	t.Run("format can be an annotation", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, validate(t, `{"format": "email"}`, `"nope"`, diagnostics.WithAssertFormat(false)))
	})

	t.Run("registered resources resolve", func(t *testing.T) {
		t.Parallel()
		shared := mustParse(t, `{"type": "integer"}`)
		err := diagnostics.Validate(
			mustParse(t, `{"$ref": "https://example.com/int.json"}`),
			mustParse(t, `"x"`),
			diagnostics.WithResource("https://example.com/int.json", shared))
		iss, ok := diagnostics.AsIssues(err)
		require.True(t, ok)
		require.Len(t, iss, 1)
		assert.Equal(t, diagnostics.CodeInvalidType, iss[0].Code)
	})

	t.Run("invalid options are not issues", func(t *testing.T) {
		t.Parallel()
		_, err := diagnostics.Compile(mustParse(t, `{}`), diagnostics.WithDraft("draft-99"))
		require.Error(t, err)
		_, ok := diagnostics.AsIssues(err)
		assert.False(t, ok)
	})
}

func TestValidator_ParityWithOneShot(t *testing.T) {
	t.Parallel()

	schema := mustParse(t, accountSchema)
	instances := []string{
		`{"id": "x", "username": "a", "profile": {"age": 20}, "tags": []}`,
		`{"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479", "username": "ok-user", "status": "archived", "tags": [1, 1]}`,
		`{"id": "f47ac10b-58cc-4372-a567-0e02b2c3d479", "username": "ok-user", "status": "active", "tags": ["t"]}`,
		`[]`,
	}

	v, err := diagnostics.Compile(schema)
	require.NoError(t, err)

	for _, raw := range instances {
		instance := mustParse(t, raw)
		assert.Equal(t, diagnostics.Validate(schema, instance), v.Validate(instance), raw)
	}
}

func TestValidator_ConcurrentUse(t *testing.T) {
	t.Parallel()

	v, err := diagnostics.Compile(mustParse(t, accountSchema))
	require.NoError(t, err)
	instance := mustParse(t, `{"id": "x", "username": "a", "profile": {"age": 20}, "tags": []}`)
	want := v.Issues(instance)
	require.Len(t, want, 5)

	const workers = 16
	results := make([]diagnostics.Issues, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = v.Issues(instance)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestValidator_WithMaskValues(t *testing.T) {
	t.Parallel()

	v, err := diagnostics.Compile(mustParse(t, personSchema))
	require.NoError(t, err)
	assert.False(t, v.MaskValues())

	masked := v.WithMaskValues(true)
	assert.True(t, masked.MaskValues())
	assert.False(t, v.MaskValues())

	instance := mustParse(t, `{"name": "ThisNameIsClearlyTooLong", "age": 25}`)
	assert.Contains(t, v.Issues(instance)[0].Message, "ThisNameIsClearlyTooLong")
	assert.NotContains(t, masked.Issues(instance)[0].Message, "ThisNameIsClearlyTooLong")
}
