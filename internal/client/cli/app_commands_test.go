package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/enyard/portal/internal/client/analytics"
	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/config"
	"github.com/enyard/portal/internal/client/identity"
	"github.com/enyard/portal/internal/client/models"
	"github.com/enyard/portal/internal/client/pipeline"
	"github.com/enyard/portal/internal/client/recaptcha"
	"github.com/enyard/portal/internal/client/session"
	"github.com/enyard/portal/internal/client/storage"
	"github.com/enyard/portal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal api.Client for command handler tests.
type fakeAPI struct {
	LoginRet        api.AuthResult
	LoginErr        error
	LastLogin       api.LoginRequest
	LastRegister    api.RegisterRequest
	RegisterErr     error
	WaitingCalls    int
	LastWaitingList api.WaitingListRequest
}

func (f *fakeAPI) Register(ctx context.Context, req api.RegisterRequest) error {
	f.LastRegister = req
	return f.RegisterErr
}

func (f *fakeAPI) VerifyEmail(ctx context.Context, token string) (string, error) {
	return "limited-" + token, nil
}

func (f *fakeAPI) RequestOTP(context.Context, api.OTPRequest) error      { return nil }
func (f *fakeAPI) RequestLoginOTP(context.Context, api.OTPRequest) error { return nil }

func (f *fakeAPI) VerifyOTP(context.Context, api.VerifyOTPRequest) (api.AuthResult, error) {
	return api.AuthResult{}, errors.New("not implemented")
}

func (f *fakeAPI) VerifyLoginOTP(context.Context, api.VerifyOTPRequest) (api.AuthResult, error) {
	return api.AuthResult{}, errors.New("not implemented")
}

func (f *fakeAPI) Login(ctx context.Context, req api.LoginRequest) (api.AuthResult, error) {
	f.LastLogin = req
	return f.LoginRet, f.LoginErr
}

func (f *fakeAPI) AdminLogin(ctx context.Context, email, password string) (api.AuthResult, error) {
	return f.LoginRet, f.LoginErr
}

func (f *fakeAPI) CurrentUser(context.Context) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) JoinWaitingList(ctx context.Context, req api.WaitingListRequest) error {
	f.WaitingCalls++
	f.LastWaitingList = req
	return nil
}

func newTestApp(t *testing.T, fc api.Client) *App {
	t.Helper()

	repo, err := storage.InitDatabase(context.Background(), "file:"+t.Name()+"_cli?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	device := identity.NewProviderWithCollector(repo, func() []string { return []string{"cli-test"} })
	store := session.NewStore(fc, repo, device, analytics.Noop{}, log)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	app := &App{
		config:  cfg,
		log:     log,
		repo:    repo,
		device:  device,
		store:   store,
		tracker: analytics.Noop{},
		reader:  bufio.NewReader(strings.NewReader("")),
	}
	app.pipe = pipeline.New(fc, store, repo, device, recaptcha.Disabled{}, analytics.Noop{}, log)
	return app
}

// stubInputs replaces the interactive input seams with queued answers.
func stubInputs(t *testing.T, texts []string, passwords [][]byte) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		next := texts[0]
		texts = texts[1:]
		return next, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		next := passwords[0]
		passwords = passwords[1:]
		return next, nil
	}
}

func TestApp_Register(t *testing.T) {
	captureOutput(t)
	fc := &fakeAPI{}
	app := newTestApp(t, fc)
	stubInputs(t, []string{"Jane Doe", "jane@x.com"}, [][]byte{[]byte("secret12"), []byte("secret12")})

	require.NoError(t, app.Register(context.Background()))

	assert.Equal(t, "Jane Doe", fc.LastRegister.Name)
	assert.Equal(t, "jane@x.com", fc.LastRegister.Email)
	assert.False(t, app.isLoggedIn())
}

func TestApp_RegisterPasswordMismatch(t *testing.T) {
	captureOutput(t)
	app := newTestApp(t, &fakeAPI{})
	stubInputs(t, []string{"Jane Doe", "jane@x.com"}, [][]byte{[]byte("secret12"), []byte("different")})

	err := app.Register(context.Background())
	require.ErrorIs(t, err, pipeline.ErrPasswordMismatch)
}

func TestApp_LoginResubmitsSavedWaitlistForm(t *testing.T) {
	out := captureOutput(t)
	fc := &fakeAPI{LoginRet: api.AuthResult{
		Token: "tok",
		User:  &models.User{ID: "u1", Name: "Jane Doe", Email: "jane@x.com"},
	}}
	app := newTestApp(t, fc)

	// a form saved before authentication
	require.NoError(t, app.repo.Set(context.Background(), storage.KeyWaitingListForm,
		[]byte(`{"name":"Jane Doe","email":"jane@x.com"}`)))

	stubInputs(t, []string{"jane@x.com"}, [][]byte{[]byte("secret12")})
	require.NoError(t, app.Login(context.Background()))

	assert.True(t, app.isLoggedIn())
	assert.Equal(t, 1, fc.WaitingCalls)
	assert.Contains(t, strings.Join(*out, ""), "waiting-list signup has been submitted")

	// device identity rode along on the login request
	assert.NotEmpty(t, fc.LastLogin.DeviceID)
}

func TestApp_LoginFailurePropagatesBackendMessage(t *testing.T) {
	captureOutput(t)
	fc := &fakeAPI{LoginErr: &api.Error{Status: 401, Message: "Invalid email or password"}}
	app := newTestApp(t, fc)

	stubInputs(t, []string{"jane@x.com"}, [][]byte{[]byte("wrong")})
	err := app.Login(context.Background())
	require.EqualError(t, err, "Invalid email or password")
	assert.False(t, app.isLoggedIn())
}

func TestApp_OTPIncompleteCode(t *testing.T) {
	captureOutput(t)
	app := newTestApp(t, &fakeAPI{})
	stubInputs(t, []string{"123"}, nil)

	err := app.OTP(context.Background())
	require.ErrorIs(t, err, pipeline.ErrIncompleteOTP)
}

func TestApp_WaitlistUnauthenticatedSavesForm(t *testing.T) {
	out := captureOutput(t)
	fc := &fakeAPI{}
	app := newTestApp(t, fc)
	stubInputs(t, []string{"Jane Doe", "jane@x.com", "Acme", ""}, nil)

	require.NoError(t, app.Waitlist(context.Background()))

	assert.Zero(t, fc.WaitingCalls)
	assert.Contains(t, strings.Join(*out, ""), "form has been saved")

	saved, err := app.repo.Get(context.Background(), storage.KeyWaitingListForm)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
}

func TestApp_ResetDeviceGeneratesNewID(t *testing.T) {
	out := captureOutput(t)
	app := newTestApp(t, &fakeAPI{})
	ctx := context.Background()

	require.NoError(t, app.ResetDevice(ctx))
	assert.Contains(t, strings.Join(*out, ""), "New device id:")

	id, err := app.repo.Get(ctx, storage.KeyDeviceID)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestApp_WhoamiLoggedOut(t *testing.T) {
	out := captureOutput(t)
	app := newTestApp(t, &fakeAPI{})

	require.NoError(t, app.Whoami(context.Background()))
	assert.Contains(t, strings.Join(*out, ""), "Not logged in.")
}

func TestApp_GetStatus(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})
	assert.Equal(t, "(guest)", app.getStatus())

	require.NoError(t, app.store.AdoptSession(context.Background(), api.AuthResult{
		Token: "tok",
		User:  &models.User{ID: "u1", Name: "Jane Doe"},
	}, "password"))
	assert.Equal(t, "(Jane Doe verified)", app.getStatus())
}
