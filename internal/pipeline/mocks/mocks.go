package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pipeline"
)

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(kind model.Kind, raw map[string]any) (model.Form, error) {
	args := m.Called(kind, raw)
	if f, ok := args.Get(0).(func(model.Kind, map[string]any) model.Form); ok {
		return f(kind, raw), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Form), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, att *model.Attachment, ownerName, label string) (model.UploadResult, error) {
	args := m.Called(ctx, att, ownerName, label)
	return args.Get(0).(model.UploadResult), args.Error(1)
}

type MockRowLogger struct {
	mock.Mock
}

func (m *MockRowLogger) Append(ctx context.Context, sub *model.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, role model.Role, recipient string, sub *model.Submission) (string, error) {
	args := m.Called(ctx, role, recipient, sub)
	return args.String(0), args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) UploadFailed(sub *model.Submission, err error) {
	m.Called(sub, err)
}

func (m *MockSink) RowLogged(sub *model.Submission, err error) {
	m.Called(sub, err)
}

func (m *MockSink) Dispatched(sub *model.Submission, mode pipeline.Mode, report model.DispatchReport) {
	m.Called(sub, mode, report)
}

func (m *MockSink) TaskFailed(sub *model.Submission, task string, err error) {
	m.Called(sub, task, err)
}
