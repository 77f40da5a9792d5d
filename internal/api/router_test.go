package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"resource_hub/internal/app/service"
	"resource_hub/internal/common"
	"resource_hub/internal/common/security"
	"resource_hub/internal/domain/model"
	"resource_hub/internal/metrics"
	"resource_hub/internal/platform/config"
	"resource_hub/internal/platform/media"
)

const testTokenPrefix = "accessToken_"

// ---- in-memory stores ----

type memCredentialRepo struct {
	byEmail map[string]*model.Credential
	byID    map[string]*model.Credential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{byEmail: map[string]*model.Credential{}, byID: map[string]*model.Credential{}}
}

func (r *memCredentialRepo) Create(_ context.Context, cred *model.Credential) error {
	if _, ok := r.byEmail[cred.Email]; ok {
		return common.ErrConflict
	}
	clone := *cred
	r.byEmail[cred.Email] = &clone
	r.byID[cred.ID] = &clone
	return nil
}

func (r *memCredentialRepo) FindByEmail(_ context.Context, email string) (*model.Credential, error) {
	cred, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *cred
	return &clone, nil
}

func (r *memCredentialRepo) FindByID(_ context.Context, id string) (*model.Credential, error) {
	cred, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *cred
	return &clone, nil
}

func (r *memCredentialRepo) FindPrincipalByID(_ context.Context, id string) (*model.Principal, error) {
	cred, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &model.Principal{ID: cred.ID, Email: cred.Email, Role: cred.Role}, nil
}

func (r *memCredentialRepo) UpdateToken(_ context.Context, id, token string) error {
	cred, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	cred.Token = token
	return nil
}

type memResourceRepo struct {
	byID map[string]*model.Resource
}

func newMemResourceRepo() *memResourceRepo {
	return &memResourceRepo{byID: map[string]*model.Resource{}}
}

func (r *memResourceRepo) Create(_ context.Context, res *model.Resource) error {
	for _, existing := range r.byID {
		if existing.Title == res.Title {
			return common.ErrConflict
		}
	}
	clone := *res
	r.byID[res.ID] = &clone
	return nil
}

func (r *memResourceRepo) Update(_ context.Context, res *model.Resource) error {
	if _, ok := r.byID[res.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *res
	r.byID[res.ID] = &clone
	return nil
}

func (r *memResourceRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *memResourceRepo) FindByTitle(_ context.Context, title string) (*model.Resource, error) {
	for _, res := range r.byID {
		if res.Title == title {
			clone := *res
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memResourceRepo) FindByIDAndAdmin(_ context.Context, id, adminID string) (*model.Resource, error) {
	res, ok := r.byID[id]
	if !ok || res.AdminID != adminID {
		return nil, common.ErrNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *memResourceRepo) List(_ context.Context, limit, offset int) ([]model.Resource, int, error) {
	all := make([]model.Resource, 0, len(r.byID))
	for _, res := range r.byID {
		all = append(all, *res)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	total := len(all)
	if offset >= total {
		return []model.Resource{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type memMediaStore struct{}

func (memMediaStore) Upload(_ context.Context, folder, publicID, _ string, body io.Reader) (*media.UploadResult, error) {
	io.Copy(io.Discard, body)
	key := folder + "/" + publicID
	return &media.UploadResult{URL: "https://cdn.test/" + key, PublicID: key}, nil
}

func (memMediaStore) DeleteByPrefix(context.Context, string) error { return nil }
func (memMediaStore) DeleteFolder(context.Context, string) error   { return nil }

// ---- harness ----

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		TokenPrefix:    testTokenPrefix,
		JWTKey:         []byte("test-secret"),
		JWTExp:         time.Hour,
		MaxUploadBytes: 2048,
	}
	tokens := security.NewTokenService(cfg)
	identityService := service.NewIdentityService(newMemCredentialRepo(), newMemCredentialRepo(), tokens, nil, bcrypt.MinCost, cfg.JWTExp)
	resourceService := service.NewResourceService(newMemResourceRepo(), memMediaStore{}, "testBase")
	return NewRouter(cfg, tokens, identityService, resourceService, metrics.NewCollector())
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("accesstoken", testTokenPrefix+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doMultipart(t *testing.T, h http.Handler, method, path, token string, fields map[string]string, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("accesstoken", testTokenPrefix+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) (string, json.RawMessage) {
	t.Helper()
	var body struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message, body.Data
}

func signUpAndIn(t *testing.T, h http.Handler, tenant, email, name, role string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/"+tenant+"/signUp", "", map[string]string{
		"email": email, "password": "Aa1!aaaa", "name": name, "role": role,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/"+tenant+"/signIn", "", map[string]string{
		"email": email, "password": "Aa1!aaaa",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, data := envelope(t, rec)
	var token string
	require.NoError(t, json.Unmarshal(data, &token))
	require.NotEmpty(t, token)
	return token
}

func createResource(t *testing.T, h http.Handler, token, title string) model.Resource {
	t.Helper()
	rec := doMultipart(t, h, http.MethodPost, "/resource/createResource", token,
		map[string]string{"title": title, "description": "some description"},
		"photo.png", "image/png", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	msg, data := envelope(t, rec)
	assert.Equal(t, "Resource created successfully.", msg)
	var res model.Resource
	require.NoError(t, json.Unmarshal(data, &res))
	return res
}

// ---- tests ----

func TestAdminSignUpScenario(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/admin/signUp", "", map[string]string{
		"email": "a@gmail.com", "password": "Aa1!aaaa", "name": "A", "role": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	msg, _ := envelope(t, rec)
	assert.Equal(t, "signUp successfully.", msg)

	rec = doJSON(t, h, http.MethodPost, "/admin/signIn", "", map[string]string{
		"email": "a@gmail.com", "password": "Aa1!aaaa",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	msg, data := envelope(t, rec)
	assert.Equal(t, "signIn successfully.", msg)
	var token string
	require.NoError(t, json.Unmarshal(data, &token))
	assert.NotEmpty(t, token)
}

func TestSignUpSharedEmailNamespace(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/admin/signUp", "", map[string]string{
		"email": "shared@gmail.com", "password": "Aa1!aaaa", "name": "Ada", "role": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// same email in the other tenant table is rejected
	rec = doJSON(t, h, http.MethodPost, "/user/signUp", "", map[string]string{
		"email": "shared@gmail.com", "password": "Aa1!aaaa", "name": "Bob", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignUpRejectsInvalidFields(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/user/signUp", "", map[string]string{
		"email": "bob@example.com", "password": "Aa1!aaaa", "name": "Bob", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-allow-listed email domain")

	rec = doJSON(t, h, http.MethodPost, "/user/signUp", "", map[string]string{
		"email": "bob@gmail.com", "password": "weakling", "name": "Bob", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "password without complexity")
}

func TestResourceRequiresToken(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/resource/getAllResources", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/resource/getAllResources", nil)
	req.Header.Set("accesstoken", "Bearer whatever")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "wrong prefix")
}

func TestResourceRoleEnforcement(t *testing.T) {
	h := newTestRouter(t)
	adminToken := signUpAndIn(t, h, "admin", "ada@gmail.com", "Ada", "admin")
	userToken := signUpAndIn(t, h, "user", "bob@gmail.com", "Bob", "user")

	res := createResource(t, h, adminToken, "Beaches")

	// user-role principal cannot mutate
	rec := doMultipart(t, h, http.MethodPost, "/resource/createResource", userToken,
		map[string]string{"title": "Forests", "description": "green"},
		"photo.png", "image/png", []byte("png-bytes"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/resource/deleteResource/"+res.ID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// but can read
	rec = doJSON(t, h, http.MethodGet, "/resource/getAllResources?page=1&limit=10", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/resource/searchResources?search=Beaches", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResourceLifecycle(t *testing.T) {
	h := newTestRouter(t)
	adminToken := signUpAndIn(t, h, "admin", "ada@gmail.com", "Ada", "admin")

	res := createResource(t, h, adminToken, "Beaches")
	require.Len(t, res.Images, 1)
	assert.NotEmpty(t, res.FolderID)

	// duplicate title rejected
	rec := doMultipart(t, h, http.MethodPost, "/resource/createResource", adminToken,
		map[string]string{"title": "Beaches", "description": "again"},
		"photo.png", "image/png", []byte("png-bytes"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// update description and image, keeping the public id
	rec = doMultipart(t, h, http.MethodPut, "/resource/updateResource/"+res.ID, adminToken,
		map[string]string{"description": "updated description", "oldPublicId": res.Images[0].PublicID},
		"newphoto.png", "image/png", []byte("new-png-bytes"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	msg, data := envelope(t, rec)
	assert.Equal(t, "Resource updated successfully.", msg)
	var updated model.Resource
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "updated description", updated.Description)
	assert.Equal(t, res.Images[0].PublicID, updated.Images[0].PublicID)

	// delete, then search returns not-found
	rec = doJSON(t, h, http.MethodDelete, "/resource/deleteResource/"+res.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg, data = envelope(t, rec)
	assert.Equal(t, "Resource deleted successfully.", msg)
	assert.Equal(t, "true", string(data))

	rec = doJSON(t, h, http.MethodGet, "/resource/searchResources?search=Beaches", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceUploadConstraints(t *testing.T) {
	h := newTestRouter(t)
	adminToken := signUpAndIn(t, h, "admin", "ada@gmail.com", "Ada", "admin")

	// over the configured size limit
	rec := doMultipart(t, h, http.MethodPost, "/resource/createResource", adminToken,
		map[string]string{"title": "Beaches", "description": "sandy"},
		"big.png", "image/png", bytes.Repeat([]byte("x"), 4096))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// disallowed format
	rec = doMultipart(t, h, http.MethodPost, "/resource/createResource", adminToken,
		map[string]string{"title": "Beaches", "description": "sandy"},
		"notes.pdf", "application/pdf", []byte("pdf-bytes"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// missing file
	rec = doMultipart(t, h, http.MethodPost, "/resource/createResource", adminToken,
		map[string]string{"title": "Beaches", "description": "sandy"},
		"", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resource_hub_http_requests_total")
}
