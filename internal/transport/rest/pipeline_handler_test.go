package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laveleven/labelai-backend/internal/adapter/labelapi"
	"github.com/laveleven/labelai-backend/internal/domain"
	"github.com/laveleven/labelai-backend/internal/service/pipeline"
)

type pipelineServiceMock struct {
	StartFunc               func(ctx context.Context, name, itemType string) (*domain.Item, error)
	RunOCRFunc              func(ctx context.Context, itemID uuid.UUID, upload labelapi.Upload) (*labelapi.OCRResult, error)
	RunStructureFunc        func(ctx context.Context, itemID uuid.UUID, req labelapi.StructureRequest) (json.RawMessage, error)
	RunTranslateFunc        func(ctx context.Context, itemID uuid.UUID, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error)
	GenerateHTMLPreviewFunc func(ctx context.Context, req labelapi.HTMLRequest) (string, error)
	ProcessFullFunc         func(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error)
	ProcessBatchFunc        func(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) ([]labelapi.BatchResult, error)
	SaveFunc                func(ctx context.Context, input pipeline.SaveInput) error
}

func (m *pipelineServiceMock) Start(ctx context.Context, name, itemType string) (*domain.Item, error) {
	return m.StartFunc(ctx, name, itemType)
}

func (m *pipelineServiceMock) RunOCR(ctx context.Context, itemID uuid.UUID, upload labelapi.Upload) (*labelapi.OCRResult, error) {
	return m.RunOCRFunc(ctx, itemID, upload)
}

func (m *pipelineServiceMock) RunStructure(ctx context.Context, itemID uuid.UUID, req labelapi.StructureRequest) (json.RawMessage, error) {
	return m.RunStructureFunc(ctx, itemID, req)
}

func (m *pipelineServiceMock) RunTranslate(ctx context.Context, itemID uuid.UUID, req labelapi.TranslateRequest) (*labelapi.TranslateResult, error) {
	return m.RunTranslateFunc(ctx, itemID, req)
}

func (m *pipelineServiceMock) GenerateHTMLPreview(ctx context.Context, req labelapi.HTMLRequest) (string, error) {
	return m.GenerateHTMLPreviewFunc(ctx, req)
}

func (m *pipelineServiceMock) ProcessFull(ctx context.Context, upload labelapi.Upload, targetCountry string, generateHTML bool) (*labelapi.PipelineResult, error) {
	return m.ProcessFullFunc(ctx, upload, targetCountry, generateHTML)
}

func (m *pipelineServiceMock) ProcessBatch(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) ([]labelapi.BatchResult, error) {
	return m.ProcessBatchFunc(ctx, items, targetCountry, generateHTML)
}

func (m *pipelineServiceMock) Save(ctx context.Context, input pipeline.SaveInput) error {
	return m.SaveFunc(ctx, input)
}

func multipartUpload(t *testing.T, fieldName, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPipelineHandler_RunOCR(t *testing.T) {
	itemID := uuid.New()
	var gotUpload labelapi.Upload
	svc := &pipelineServiceMock{
		RunOCRFunc: func(ctx context.Context, id uuid.UUID, upload labelapi.Upload) (*labelapi.OCRResult, error) {
			assert.Equal(t, itemID, id)
			gotUpload = upload
			return &labelapi.OCRResult{
				Filename: upload.Filename,
				Language: "ko",
				Texts:    []string{"우유"},
			}, nil
		},
	}
	handler := NewPipelineHandler(svc, 1<<20, discardLogger())

	body, contentType := multipartUpload(t, "file", "label.png", []byte("png-bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/"+itemID.String()+"/ocr", body)
	req.Header.Set("Content-Type", contentType)
	req.SetPathValue("itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler.RunOCR(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "label.png", gotUpload.Filename)
	assert.Equal(t, []byte("png-bytes"), gotUpload.Content)

	var resp labelapi.OCRResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"우유"}, resp.Texts)
}

func TestPipelineHandler_RunOCR_MissingFile(t *testing.T) {
	handler := NewPipelineHandler(&pipelineServiceMock{}, 1<<20, discardLogger())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	itemID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/"+itemID.String()+"/ocr", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetPathValue("itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler.RunOCR(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPipelineHandler_GenerateHTML_ReturnsRawHTML(t *testing.T) {
	svc := &pipelineServiceMock{
		GenerateHTMLPreviewFunc: func(ctx context.Context, req labelapi.HTMLRequest) (string, error) {
			assert.Equal(t, "KR", req.Country)
			return "<html><body>label</body></html>", nil
		},
	}
	handler := NewPipelineHandler(svc, 1<<20, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/transient/generate-html",
		strings.NewReader(`{"country":"KR","data":{"name":"yogurt"}}`))
	rec := httptest.NewRecorder()
	handler.GenerateHTML(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html><body>label</body></html>", rec.Body.String())
}

func TestPipelineHandler_Save(t *testing.T) {
	itemID := uuid.New()
	var got pipeline.SaveInput
	svc := &pipelineServiceMock{
		SaveFunc: func(ctx context.Context, input pipeline.SaveInput) error {
			got = input
			return nil
		},
	}
	handler := NewPipelineHandler(svc, 1<<20, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/"+itemID.String()+"/save",
		strings.NewReader(`{
			"originalFileName": "label.png",
			"ocrResult": {"texts":["milk"]},
			"sketchResult": {"html":"<p/>"}
		}`))
	req.SetPathValue("itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler.Save(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, itemID, got.ItemID)
	require.NotNil(t, got.OriginalFileName)
	assert.Equal(t, "label.png", *got.OriginalFileName)
	assert.JSONEq(t, `{"texts":["milk"]}`, string(got.OCRResult))
	assert.Nil(t, got.StructureResult)
}

func TestPipelineHandler_SaveDependencyDown(t *testing.T) {
	itemID := uuid.New()
	svc := &pipelineServiceMock{
		RunStructureFunc: func(ctx context.Context, id uuid.UUID, req labelapi.StructureRequest) (json.RawMessage, error) {
			return nil, domain.ErrDependencyUnavailable
		},
	}
	handler := NewPipelineHandler(svc, 1<<20, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/"+itemID.String()+"/structure",
		strings.NewReader(`{"language":"ko","texts":["우유"]}`))
	req.SetPathValue("itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler.RunStructure(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "DEPENDENCY_UNAVAILABLE")
}

func TestPipelineHandler_ProcessBatch(t *testing.T) {
	svc := &pipelineServiceMock{
		ProcessBatchFunc: func(ctx context.Context, items []labelapi.BatchItem, targetCountry string, generateHTML bool) ([]labelapi.BatchResult, error) {
			require.Len(t, items, 2)
			assert.Equal(t, "US", targetCountry)
			assert.True(t, generateHTML)
			return []labelapi.BatchResult{
				{ItemID: items[0].ItemID, Result: &labelapi.PipelineResult{HTMLOutput: "<p/>"}},
				{ItemID: items[1].ItemID, Err: domain.ErrDependencyUnavailable},
			}, nil
		},
	}
	handler := NewPipelineHandler(svc, 1<<20, discardLogger())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.png", "b.png"} {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("img"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("target_country", "US"))
	require.NoError(t, mw.WriteField("generate_html", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ProcessBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []batchResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Empty(t, resp[0].Error)
	assert.NotEmpty(t, resp[1].Error)
}
