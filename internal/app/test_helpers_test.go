package app

import (
	"context"
	"path/filepath"

	"github.com/stretchr/testify/mock"

	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/fs"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "maxLength": 10},
		"age": {"type": "number", "minimum": 18}
	},
	"required": ["name", "age"]
}`

type MockManager struct {
	mock.Mock
	cfg *config.Config
}

func (m *MockManager) Config() *config.Config {
	return m.cfg
}

func (m *MockManager) ValidateDocuments(ctx context.Context, opts ValidateOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockManager) WatchValidation(ctx context.Context, opts ValidateOptions, readyChan chan<- struct{}) error {
	args := m.Called(ctx, opts, readyChan)
	return args.Error(0)
}

func (m *MockManager) CheckSchema(ctx context.Context, schemaPath string, format string) error {
	args := m.Called(ctx, schemaPath, format)
	return args.Error(0)
}

func (m *MockManager) Codes(format string) error {
	args := m.Called(format)
	return args.Error(0)
}

func (m *MockManager) Serve(ctx context.Context, addr string) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

// mockPathResolver is a test implementation of fs.PathResolver.
type mockPathResolver struct {
	absFn           func(path string) (string, error)
	listDocumentsFn func(path string) ([]string, error)
}

func (m *mockPathResolver) CanonicalPath(path string) (string, error) {
	return fs.NewPathResolver().CanonicalPath(path)
}

func (m *mockPathResolver) Abs(path string) (string, error) {
	if m.absFn != nil {
		return m.absFn(path)
	}
	return filepath.Abs(path)
}

func (m *mockPathResolver) ListDocuments(path string) ([]string, error) {
	if m.listDocumentsFn != nil {
		return m.listDocumentsFn(path)
	}
	return fs.ListDocuments(path)
}
