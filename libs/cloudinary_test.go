package libs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-admin/clients"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCloudinaryAPI struct {
	mock.Mock
}

func (m *MockCloudinaryAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(ctx, file, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.UploadResult), args.Error(1)
}

func (m *MockCloudinaryAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(ctx, params)
	return &uploader.DestroyResult{Result: "ok"}, args.Error(0)
}

func uploadFiles(names ...string) []clients.UploadFile {
	files := make([]clients.UploadFile, 0, len(names))
	for _, n := range names {
		files = append(files, clients.UploadFile{Filename: n, ContentType: "image/png", Body: strings.NewReader(n)})
	}
	return files
}

func withFilename(name string) interface{} {
	return mock.MatchedBy(func(p uploader.UploadParams) bool {
		return strings.HasSuffix(p.PublicID, "_"+strings.TrimSuffix(name, ".png"))
	})
}

func TestCloudinaryUploader_Upload(t *testing.T) {
	api := new(MockCloudinaryAPI)
	api.On("Upload", mock.Anything, mock.Anything, withFilename("a.png")).
		Return(&uploader.UploadResult{PublicID: "shop/a", SecureURL: "https://res.cloudinary.com/a.png"}, nil).Once()
	api.On("Upload", mock.Anything, mock.Anything, withFilename("b.png")).
		Return(&uploader.UploadResult{PublicID: "shop/b", URL: "http://res.cloudinary.com/b.png"}, nil).Once()

	u := &CloudinaryUploader{api: api, folder: "shop"}
	urls, err := u.Upload(context.Background(), uploadFiles("a.png", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://res.cloudinary.com/a.png", "http://res.cloudinary.com/b.png"}, urls)
	api.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}

func TestCloudinaryUploader_FailureDestroysEarlierUploads(t *testing.T) {
	api := new(MockCloudinaryAPI)
	api.On("Upload", mock.Anything, mock.Anything, withFilename("a.png")).
		Return(&uploader.UploadResult{PublicID: "shop/a", SecureURL: "https://res.cloudinary.com/a.png"}, nil).Once()
	api.On("Upload", mock.Anything, mock.Anything, withFilename("b.png")).
		Return(&uploader.UploadResult{PublicID: "shop/b", SecureURL: "https://res.cloudinary.com/b.png"}, nil).Once()
	api.On("Upload", mock.Anything, mock.Anything, withFilename("c.png")).
		Return(nil, errors.New("quota exceeded")).Once()
	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "shop/a", ResourceType: "image"}).Return(nil).Once()
	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "shop/b", ResourceType: "image"}).Return(errors.New("gone")).Once()

	u := &CloudinaryUploader{api: api, folder: "shop"}
	urls, err := u.Upload(context.Background(), uploadFiles("a.png", "b.png", "c.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.png")
	assert.Nil(t, urls)
	api.AssertExpectations(t)
}

func TestCloudinaryUploader_ErrorInResultCountsAsFailure(t *testing.T) {
	api := new(MockCloudinaryAPI)
	res := &uploader.UploadResult{}
	res.Error.Message = "Invalid image file"
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(res, nil).Once()

	u := &CloudinaryUploader{api: api}
	_, err := u.Upload(context.Background(), uploadFiles("a.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
	api.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}
