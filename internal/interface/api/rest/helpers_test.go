package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-directory-api/internal/application/ports"
	domain "user-directory-api/internal/domain/user"
)

type FakeUserService struct {
	FindUserByIDFunc func(ctx context.Context, id domain.UUID) (*domain.User, error)
	FindUsersFunc    func(ctx context.Context) (domain.Users, error)
	CreateUserFunc   func(ctx context.Context, u domain.User, image *multipart.FileHeader) (*domain.User, error)
	UpdateUserFunc   func(ctx context.Context, id domain.UUID, p domain.Patch, image *multipart.FileHeader) (*domain.User, error)
	DeleteUserFunc   func(ctx context.Context, id domain.UUID) error
}

func (f *FakeUserService) FindUserByID(ctx context.Context, id domain.UUID) (*domain.User, error) {
	if f.FindUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByIDFunc(ctx, id)
}
func (f *FakeUserService) FindUsers(ctx context.Context) (domain.Users, error) {
	if f.FindUsersFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUsersFunc(ctx)
}
func (f *FakeUserService) CreateUser(ctx context.Context, u domain.User, image *multipart.FileHeader) (*domain.User, error) {
	if f.CreateUserFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateUserFunc(ctx, u, image)
}
func (f *FakeUserService) UpdateUser(ctx context.Context, id domain.UUID, p domain.Patch, image *multipart.FileHeader) (*domain.User, error) {
	if f.UpdateUserFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UpdateUserFunc(ctx, id, p, image)
}
func (f *FakeUserService) DeleteUser(ctx context.Context, id domain.UUID) error {
	if f.DeleteUserFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteUserFunc(ctx, id)
}

type FakeAttachmentService struct {
	StoreFunc  func(ctx context.Context, in *multipart.FileHeader) (string, error)
	OpenFunc   func(storagePath string) (*os.File, string, error)
	RemoveFunc func(storagePath string) error
}

func (f *FakeAttachmentService) Store(ctx context.Context, in *multipart.FileHeader) (string, error) {
	if f.StoreFunc == nil {
		return "", errors.New("not used")
	}
	return f.StoreFunc(ctx, in)
}
func (f *FakeAttachmentService) Open(storagePath string) (*os.File, string, error) {
	if f.OpenFunc == nil {
		return nil, "", errors.New("not used")
	}
	return f.OpenFunc(storagePath)
}
func (f *FakeAttachmentService) Remove(storagePath string) error {
	if f.RemoveFunc == nil {
		return errors.New("not used")
	}
	return f.RemoveFunc(storagePath)
}
func (f *FakeAttachmentService) ResolveURL(storagePath string) string {
	return "http://localhost:5000/files/" + storagePath
}

func setupRouter(t *testing.T, us ports.UserService, as ports.AttachmentService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	logger := zap.NewNop()
	NewUserController(r, us, as, 0, logger)
	NewFileController(r, as, logger)

	return r
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type upload struct {
	name    string
	content []byte
}

func doMultipartReq(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, file *upload) *httptest.ResponseRecorder {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile(imageField, file.name)
		require.NoError(t, err)
		_, _ = fw.Write(file.content)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(method, path, &b)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func httptestRecorder(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
