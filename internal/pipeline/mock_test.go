package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, s *schema.Schema, text string) (model.Raw, error) {
	args := m.Called(ctx, s, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Raw), args.Error(1)
}

// --- Converter Mock ---

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) Convert(ctx context.Context, path, mimeType string) (string, error) {
	args := m.Called(ctx, path, mimeType)
	return args.String(0), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateFact(ctx context.Context, caseID int64, fact model.DerivedFact) (string, error) {
	args := m.Called(ctx, caseID, fact)
	return args.String(0), args.Error(1)
}

func (m *mockStore) CreatePersona(ctx context.Context, caseID int64, p model.DerivedPersona, source string) (string, error) {
	args := m.Called(ctx, caseID, p, source)
	return args.String(0), args.Error(1)
}

func (m *mockStore) CreateAnnotation(ctx context.Context, a model.Annotation) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}

func (m *mockStore) CreateFactEvidence(ctx context.Context, ev model.FactEvidence) (string, error) {
	args := m.Called(ctx, ev)
	return args.String(0), args.Error(1)
}

func (m *mockStore) FindProceedingByNumber(ctx context.Context, number string) (*model.Proceeding, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Proceeding), args.Error(1)
}

func (m *mockStore) FindClientByName(ctx context.Context, name string) (*model.Client, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *mockStore) UpdateEnrichmentStatus(ctx context.Context, documentID int64, status model.EnrichmentStatus, data model.Raw) error {
	args := m.Called(ctx, documentID, status, data)
	return args.Error(0)
}

func (m *mockStore) UpsertProceedings(ctx context.Context, ps []model.Proceeding) (int64, error) {
	args := m.Called(ctx, ps)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) UpsertClients(ctx context.Context, cs []model.Client) (int64, error) {
	args := m.Called(ctx, cs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
