package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/campusbuddy/helpdesk/apps/api/echo"
	"github.com/campusbuddy/helpdesk/core/profile"
	testutil "github.com/campusbuddy/helpdesk/tests"
)

func TestProfileAPI_register(t *testing.T) {
	f := setup(t)

	tests := []httpTest{
		{
			name:     "empty body",
			method:   http.MethodPost,
			path:     "/v1/profiles/register",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"full_name":        "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name:   "weak password",
			method: http.MethodPost,
			path:   "/v1/profiles/register",
			body: marshalObj(t, map[string]string{
				"full_name": "New Kid", "email": "kid@college.edu", "password": "12345678", "password_confirm": "12345678",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name:   "password similar to email",
			method: http.MethodPost,
			path:   "/v1/profiles/register",
			body: marshalObj(t, map[string]string{
				"full_name": "New Kid", "email": "kiddo@college.edu", "password": "kiddo@college", "password_confirm": "kiddo@college",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"password": "password cannot be similar to your name or email"}),
		},
		{
			name:   "email taken",
			method: http.MethodPost,
			path:   "/v1/profiles/register",
			body: marshalObj(t, map[string]string{
				"full_name": "Other Hero", "email": "HERO@college.edu", "password": "Sup3rSecret!", "password_confirm": "Sup3rSecret!",
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"email": "a profile with this email already exists"}),
		},
	}
	runHTTPTests(t, f, tests)

	t.Run("success", func(t *testing.T) {
		body := marshalObj(t, map[string]string{
			"full_name":        "  New Kid ",
			"email":            "Kid@College.edu",
			"password":         "Sup3rSecret!",
			"password_confirm": "Sup3rSecret!",
			"user_type":        profile.TypeFaculty, // ignored
		})
		req, rec := newRequest(http.MethodPost, "/v1/profiles/register", body)
		f.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.AuthResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.Profile.ID)
		assert.Equal(t, "New Kid", resp.Profile.FullName)
		assert.Equal(t, "kid@college.edu", resp.Profile.Email)
		assert.Equal(t, profile.TypeStudent, resp.Profile.UserType)

		// the token is usable right away
		req, rec = newAuthRequest(http.MethodGet, "/v1/profiles/me", resp.Token)
		f.serve(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestProfileAPI_login(t *testing.T) {
	f := setup(t)
	testutil.CreateProfile(t, f.profileRepo, "Gone Student", "gone@college.edu", "Sup3rSecret!", profile.TypeStudent, false)

	tests := []httpTest{
		{
			name:     "empty body",
			method:   http.MethodPost,
			path:     "/v1/profiles/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/v1/profiles/login",
			body:     marshalObj(t, echoapi.LoginRequest{Email: "nobody@college.edu", Password: "Sup3rSecret!"}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "invalid email or password"}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/v1/profiles/login",
			body:     marshalObj(t, echoapi.LoginRequest{Email: "hero@college.edu", Password: "wrong-one"}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "invalid email or password"}),
		},
		{
			name:     "deactivated",
			method:   http.MethodPost,
			path:     "/v1/profiles/login",
			body:     marshalObj(t, echoapi.LoginRequest{Email: "gone@college.edu", Password: "Sup3rSecret!"}),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, f, tests)

	t.Run("success", func(t *testing.T) {
		body := marshalObj(t, echoapi.LoginRequest{Email: " Hero@College.edu ", Password: "Sup3rSecret!"})
		req, rec := newRequest(http.MethodPost, "/v1/profiles/login", body)
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)

		p, err := f.profileRepo.GetProfile(req.Context(), profile.GetFilter{ID: f.student.ID})
		require.NoError(t, err)
		assert.False(t, p.LastLogin.IsZero())
	})
}

func TestProfileAPI_me(t *testing.T) {
	f := setup(t)
	gone := testutil.CreateProfile(t, f.profileRepo, "Gone Student", "gone@college.edu", "Sup3rSecret!", profile.TypeStudent, false)
	ghost := profile.Profile{ID: "2b1c0d2e-8a53-4c39-9d43-4d0cbf4f3d1a", FullName: "Ghost", UserType: profile.TypeStudent}

	tests := []httpTest{
		{
			name:     "no token",
			path:     "/v1/profiles/me",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "bad token",
			path:     "/v1/profiles/me",
			token:    "not.a.token",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown profile",
			path:     "/v1/profiles/me",
			token:    f.token(t, ghost),
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name:     "deactivated",
			path:     "/v1/profiles/me",
			token:    f.token(t, gone),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, f, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/profiles/me", f.token(t, f.student))
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		var p profile.Profile
		decode(t, rec, &p)
		assert.Equal(t, f.student.ID, p.ID)
		assert.Equal(t, f.student.Email, p.Email)
		assert.Equal(t, profile.TypeStudent, p.UserType)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}

func TestProfileAPI_refreshToken(t *testing.T) {
	f := setup(t)

	expired := echoapi.GetProfileClaims(f.conf, f.student, time.Now().Add(-f.conf.Server.JWTRefreshExpirationDelta-time.Minute).Unix())
	expiredToken, err := echoapi.GenerateToken(f.conf, expired)
	require.NoError(t, err)

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodPost,
			path:     "/v1/profiles/token-refresh",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "refresh expired",
			method:   http.MethodPost,
			path:     "/v1/profiles/token-refresh",
			token:    expiredToken,
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
		},
	}
	runHTTPTests(t, f, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/profiles/token-refresh", f.token(t, f.student))
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp echoapi.LoginResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})
}

func TestProfileAPI_query(t *testing.T) {
	f := setup(t)
	testutil.CreateProfile(t, f.profileRepo, "Second Student", "second@college.edu", "Sup3rSecret!", profile.TypeStudent, true)

	runHTTPTests(t, f, []httpTest{
		{
			name:     "no token",
			path:     "/v1/profiles",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "student",
			path:     "/v1/profiles",
			token:    f.token(t, f.student),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
	})

	tests := []struct {
		name      string
		path      string
		wantCount int
	}{
		{"all", "/v1/profiles", 3},
		{"students", "/v1/profiles?user_type=student", 2},
		{"faculty", "/v1/profiles?user_type=FACULTY", 1},
		{"search", "/v1/profiles?search=second", 1},
		{"ordered", "/v1/profiles?ordering=-email,nope", 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tc.path, f.token(t, f.faculty))
			f.serve(req, rec)
			require.Equal(t, http.StatusOK, rec.Code)

			var profiles []profile.Profile
			decode(t, rec, &profiles)
			assert.Len(t, profiles, tc.wantCount)
		})
	}

	t.Run("ordering", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/profiles?ordering=-email", f.token(t, f.faculty))
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		var profiles []profile.Profile
		decode(t, rec, &profiles)
		require.Len(t, profiles, 3)
		assert.Equal(t, "second@college.edu", profiles[0].Email)
		assert.Equal(t, "ada@college.edu", profiles[2].Email)
	})
}
