package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/vision-client/pkg/httpclient"
)

type capturedRequest struct {
	method      string
	requestURI  string
	contentType string
	requestID   string
	body        []byte
	form        *multipart.Form
}

// capture records the request and answers with status and body.
func capture(into *capturedRequest, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		into.method = r.Method
		into.requestURI = r.RequestURI
		into.contentType = r.Header.Get("Content-Type")
		into.requestID = r.Header.Get("X-Request-ID")
		if strings.HasPrefix(into.contentType, "multipart/") {
			if err := r.ParseMultipartForm(10 << 20); err == nil {
				into.form = r.MultipartForm
			}
		} else {
			into.body, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func blob(name, content string) Blob {
	return Blob{FileName: name, ContentType: "image/jpeg", Reader: strings.NewReader(content)}
}

func TestGetTrainingStatusIssuesBodylessGet(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"task_id":"abc-123","status":"running"}`))

	resp, err := c.GetTrainingStatus(context.Background(), "abc-123")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/v1/training/status/abc-123", got.requestURI)
	assert.Empty(t, got.body)

	var status TrainingStatus
	require.NoError(t, resp.Decode(&status))
	assert.Equal(t, "abc-123", status.TaskID)
	assert.False(t, status.Terminal())
}

func TestPathParametersStayInOneSegment(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{}`))

	_, err := c.GetTrainingStatus(context.Background(), "a/b c?d")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/training/status/a%2Fb%20c%3Fd", got.requestURI)

	for _, id := range []string{".", ".."} {
		got = capturedRequest{}
		_, err := c.GetTrainingStatus(context.Background(), id)
		require.ErrorIsf(t, err, ErrInvalidInput, "task id %q", id)
		assert.Emptyf(t, got.requestURI, "task id %q reached the server", id)
	}
}

func TestCreateAnnotationProjectSendsEmptyDescription(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"success":true,"project_id":7}`))

	_, err := c.CreateAnnotationProject(context.Background(), "Demo", "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/v1/labelstudio/projects/create?title=Demo&description=", got.requestURI)
	assert.Empty(t, got.body)
}

func TestExportAnnotationsDefaultsFormat(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"success":true}`))

	_, err := c.ExportAnnotations(context.Background(), 12, "helmets v2", "")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/labelstudio/export/12?dataset_name=helmets+v2&format=YOLO", got.requestURI)

	_, err = c.ExportAnnotations(context.Background(), 12, "helmets", "COCO")
	require.NoError(t, err)
	u, err := url.ParseRequestURI(got.requestURI)
	require.NoError(t, err)
	assert.Equal(t, "COCO", u.Query().Get("format"))
}

func TestInferImageOmitsAbsentOptions(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"success":true,"detections":[]}`))

	_, err := c.InferImage(context.Background(), blob("cat.jpg", "jpegdata"), InferenceOptions{})
	require.NoError(t, err)
	require.NotNil(t, got.form)

	assert.Len(t, got.form.File["file"], 1)
	assert.Equal(t, "cat.jpg", got.form.File["file"][0].Filename)
	for _, name := range []string{"model_name", "confidence", "iou_threshold", "img_size"} {
		_, present := got.form.Value[name]
		assert.Falsef(t, present, "field %s should not be sent", name)
	}
}

func TestInferImageSendsZeroValuedOptions(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"success":true}`))

	_, err := c.InferImage(context.Background(), blob("cat.jpg", "x"), InferenceOptions{
		ModelName:    String("best.pt"),
		Confidence:   Float64(0),
		IoUThreshold: Float64(0.45),
		ImgSize:      Int(640),
	})
	require.NoError(t, err)
	require.NotNil(t, got.form)

	assert.Equal(t, []string{"best.pt"}, got.form.Value["model_name"])
	assert.Equal(t, []string{"0"}, got.form.Value["confidence"])
	assert.Equal(t, []string{"0.45"}, got.form.Value["iou_threshold"])
	assert.Equal(t, []string{"640"}, got.form.Value["img_size"])
}

func TestInferBatchRepeatsSharedFieldInOrder(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"results":[]}`))

	images := []Blob{blob("a.jpg", "1"), blob("b.jpg", "2"), blob("c.jpg", "3")}
	_, err := c.InferBatch(context.Background(), images, BatchInferenceOptions{Confidence: Float64(0.5)})
	require.NoError(t, err)
	require.NotNil(t, got.form)

	files := got.form.File["files"]
	require.Len(t, files, 3)
	for i, want := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		assert.Equal(t, want, files[i].Filename)
	}
	assert.Equal(t, []string{"0.5"}, got.form.Value["confidence"])
	_, present := got.form.Value["model_name"]
	assert.False(t, present)
}

func TestInferBatchRequiresImages(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft))

	_, err := c.InferBatch(context.Background(), nil, BatchInferenceOptions{})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, ft.calls())
}

func TestStartTrainingSendsJSON(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{"success":true,"task_id":"t1"}`))

	cfg := NewTrainingConfig("helmets", "/data/datasets/helmets/data.yaml")
	cfg.Epochs = 5
	_, err := c.StartTraining(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/training/start", got.requestURI)
	assert.Equal(t, "application/json", got.contentType)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(got.body, &sent))
	assert.Equal(t, "helmets", sent["project_name"])
	assert.EqualValues(t, 5, sent["epochs"])
	assert.Equal(t, true, sent["pretrained"])
}

func TestStartTrainingRejectsIncompleteConfig(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft))

	_, err := c.StartTraining(context.Background(), TrainingConfig{ProjectName: "p"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, ft.calls())
}

func TestRequestsCarryUniqueRequestIDs(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `{}`))

	_, err := c.HealthCheck(context.Background())
	require.NoError(t, err)
	first := got.requestID
	_, err = c.HealthCheck(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, got.requestID)
}

func TestStrictModeReturnsStatusError(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusInternalServerError, `{"detail":"Failed to create project"}`))

	resp, err := c.CreateAnnotationProject(context.Background(), "Demo", "")
	require.Nil(t, resp)
	require.ErrorIs(t, err, ErrStatus)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to create project", apiErr.Detail)
	assert.Equal(t, "create_annotation_project", apiErr.Op)
	assert.Contains(t, err.Error(), "create_annotation_project")
}

func TestCompatibilityModeReturnsErrorBodyAsValue(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusInternalServerError, `{"detail":"boom"}`), WithCompatibilityMode())

	resp, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, resp.OK())

	v, err := resp.Value()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"detail": "boom"}, v)
}

func TestNonJSONBodyIsDecodeError(t *testing.T) {
	var got capturedRequest
	c := newServerClient(t, capture(&got, http.StatusOK, `<html>gateway</html>`))

	_, err := c.GetSystemInfo(context.Background())
	require.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrTransport)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "<html>gateway</html>", string(apiErr.Body))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestEmptyBodyIsDecodeError(t *testing.T) {
	ft := &fakeTransport{fn: func(context.Context, *httpclient.Request) (httpclient.Response, error) {
		return fakeResponse{status: http.StatusOK}, nil
	}}
	c := New(WithTransport(ft))

	_, err := c.ListDatasets(context.Background())
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	ft := &fakeTransport{fn: func(context.Context, *httpclient.Request) (httpclient.Response, error) {
		return nil, errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	}}
	c := New(WithTransport(ft))

	_, err := c.ListModels(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.Equal(t, 1, ft.calls())
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	c := newServerClient(t, capture(&capturedRequest{}, http.StatusOK, `{}`))
	// Port 1 on loopback refuses connections.
	c.baseURL = "http://127.0.0.1:1"

	_, err := c.HealthCheck(context.Background())
	require.ErrorIs(t, err, ErrTransport)
}

func TestCancelledContextIsCancelledError(t *testing.T) {
	ft := &fakeTransport{fn: func(ctx context.Context, _ *httpclient.Request) (httpclient.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := New(WithTransport(ft))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.UploadModel(ctx, blob("best.pt", "weights"))
	require.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestDeadlineIsTransportError(t *testing.T) {
	ft := &fakeTransport{fn: func(ctx context.Context, _ *httpclient.Request) (httpclient.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := New(WithTransport(ft))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.ListTrainingTasks(ctx)
	require.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMissingPlaceholderIsInvalidInput(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft))

	_, err := c.GetTrainingStatus(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, ft.calls())
}

func TestUnsupportedValueIsInvalidInput(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft))

	_, err := c.Perform(context.Background(), EndpointInferImage, Request{
		Fields: []Field{{Name: "file", Value: struct{}{}}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = c.Perform(context.Background(), EndpointCreateProject, Request{
		Fields: []Field{{Name: "title", Value: blob("x.jpg", "x")}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, ft.calls())
}

func TestBlobReadersClosedAfterDispatch(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft))

	r := &trackingReader{data: []byte("weights")}
	_, err := c.UploadModel(context.Background(), Blob{FileName: "best.pt", Reader: r})
	require.NoError(t, err)
	assert.True(t, r.closed)

	req := ft.last()
	require.NotNil(t, req)
	require.Len(t, req.Parts, 1)
	assert.Equal(t, "file", req.Parts[0].Field)
	assert.Equal(t, "application/octet-stream", req.Parts[0].ContentType)
}

func TestBlobReadersClosedWhenNotEncoded(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft))

	cases := []struct {
		name string
		ep   Endpoint
		req  func(r *trackingReader) Request
	}{
		{"none payload", EndpointListModels, func(r *trackingReader) Request {
			return Request{Fields: []Field{{Name: "file", Value: Blob{FileName: "a.pt", Reader: r}}}}
		}},
		{"json payload", EndpointExportModel, func(r *trackingReader) Request {
			return Request{Body: NewExportConfig("m.pt"), Fields: []Field{{Name: "file", Value: []Blob{{FileName: "a.pt", Reader: r}}}}}
		}},
		{"query payload", EndpointCreateProject, func(r *trackingReader) Request {
			return Request{Fields: []Field{{Name: "title", Value: &Blob{FileName: "a.pt", Reader: r}}}}
		}},
		{"bad path on multipart", Endpoint{Name: "upload_to", Method: http.MethodPost, Path: "/up/{id}", Kind: PayloadMultipart}, func(r *trackingReader) Request {
			return Request{Fields: []Field{{Name: "file", Value: Blob{FileName: "a.pt", Reader: r}}}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &trackingReader{data: []byte("x")}
			_, err := c.Perform(context.Background(), tc.ep, tc.req(r))
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.True(t, r.closed)
		})
	}
	assert.Zero(t, ft.calls())
}

func TestPrefixAndBaseURLAreApplied(t *testing.T) {
	ft := &fakeTransport{}
	c := New(WithTransport(ft), WithBaseURL("https://vision.local/"), WithPrefix("api/v2/"))

	_, err := c.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://vision.local/api/v2/datasets/list", ft.last().URL)
	assert.Equal(t, "application/json", ft.last().Headers["Accept"])
	assert.True(t, c.Strict())
}

func TestCatalogMatchesWireContract(t *testing.T) {
	type row struct {
		method string
		path   string
		kind   PayloadKind
	}
	want := map[string]row{
		"get_system_info":           {http.MethodGet, "/system/info", PayloadNone},
		"health_check":              {http.MethodGet, "/system/health", PayloadNone},
		"infer_image":               {http.MethodPost, "/inference/image", PayloadMultipart},
		"infer_batch":               {http.MethodPost, "/inference/batch", PayloadMultipart},
		"start_training":            {http.MethodPost, "/training/start", PayloadJSON},
		"get_training_status":       {http.MethodGet, "/training/status/{task_id}", PayloadNone},
		"list_training_tasks":       {http.MethodGet, "/training/tasks", PayloadNone},
		"list_models":               {http.MethodGet, "/models/list", PayloadNone},
		"upload_model":              {http.MethodPost, "/models/upload", PayloadMultipart},
		"export_model":              {http.MethodPost, "/models/export", PayloadJSON},
		"list_datasets":             {http.MethodGet, "/datasets/list", PayloadNone},
		"upload_dataset":            {http.MethodPost, "/datasets/upload", PayloadMultipart},
		"check_labelstudio":         {http.MethodGet, "/labelstudio/check", PayloadNone},
		"list_annotation_projects":  {http.MethodGet, "/labelstudio/projects", PayloadNone},
		"create_annotation_project": {http.MethodPost, "/labelstudio/projects/create", PayloadQuery},
		"export_annotations":        {http.MethodPost, "/labelstudio/export/{project_id}", PayloadQuery},
	}

	catalog := Catalog()
	require.Len(t, catalog, len(want))
	for _, ep := range catalog {
		w, ok := want[ep.Name]
		require.Truef(t, ok, "unexpected endpoint %s", ep.Name)
		assert.Equal(t, w.method, ep.Method, ep.Name)
		assert.Equal(t, w.path, ep.Path, ep.Name)
		assert.Equal(t, w.kind, ep.Kind, ep.Name)
	}
}
