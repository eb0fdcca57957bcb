package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"microblog/internal/models"
	"microblog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserProfile(t *testing.T) {
	s, m, app := newMockServer()
	app.Get("/user/:username", s.UserProfile)

	john := &models.User{ID: 2, Username: "john"}
	m.users.On("GetByUsername", mock.Anything, "john").Return(john, nil)
	m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, models.NewNotFoundError("User", "ghost"))
	m.follows.On("Counts", mock.Anything, uint(2)).Return(int64(1), int64(4), nil)
	m.follows.On("IsFollowing", mock.Anything, uint(1), uint(2)).Return(true, nil)
	m.posts.On("ListByAuthor", mock.Anything, uint(2), 2, 0).
		Return([]models.Post{{ID: 5, Body: "mine", UserID: 2}}, int64(1), nil)

	tests := []struct {
		name           string
		username       string
		expectedStatus int
	}{
		{"Success", "john", http.StatusOK},
		{"Unknown user", "ghost", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/user/"+tt.username, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus != http.StatusOK {
				return
			}
			var body profileResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "john", body.User.Username)
			assert.Equal(t, int64(1), body.User.FollowersCount)
			assert.Equal(t, int64(4), body.User.FollowingCount)
			assert.True(t, body.IsFollowing)
			require.Len(t, body.Page.Items, 1)
			assert.False(t, body.Page.HasNext)
		})
	}
}

func TestEditProfileForm(t *testing.T) {
	s, m, app := newMockServer()
	app.Get("/edit_profile", s.EditProfileForm)
	m.users.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "susan", FirstName: "Susan", LastName: "Smith", AboutMe: "hi"}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/edit_profile", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "susan", body["username"])
	assert.Equal(t, "hi", body["about_me"])
}

func TestEditProfile(t *testing.T) {
	current := &models.User{ID: 1, Username: "susan", FirstName: "Susan", LastName: "Smith"}

	tests := []struct {
		name           string
		form           url.Values
		mockSetup      func(m *mocks)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "Success",
			form: url.Values{"username": {"susan2"}, "first_name": {"Susan"}, "last_name": {"Smith"}, "about_me": {strings.Repeat("a", 140)}},
			mockSetup: func(m *mocks) {
				m.users.On("GetByID", mock.Anything, uint(1)).Return(current, nil)
				m.users.On("UsernameTaken", mock.Anything, "susan2", uint(1)).Return(false, nil)
				m.users.On("UpdateProfile", mock.Anything, uint(1), mock.AnythingOfType("repository.ProfileFields")).
					Return(&models.User{ID: 1, Username: "susan2"}, nil)
			},
			expectedStatus: http.StatusSeeOther,
		},
		{
			name:           "About me too long",
			form:           url.Values{"username": {"susan"}, "first_name": {"Susan"}, "last_name": {"Smith"}, "about_me": {strings.Repeat("a", 141)}},
			mockSetup:      func(*mocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "about_me",
		},
		{
			name: "Duplicate username",
			form: url.Values{"username": {"john"}, "first_name": {"Susan"}, "last_name": {"Smith"}},
			mockSetup: func(m *mocks) {
				m.users.On("GetByID", mock.Anything, uint(1)).Return(current, nil)
				m.users.On("UsernameTaken", mock.Anything, "john", uint(1)).Return(true, nil)
			},
			expectedStatus: http.StatusConflict,
			expectedField:  "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m, app := newMockServer()
			app.Post("/edit_profile", s.EditProfile)
			tt.mockSetup(m)

			req := httptest.NewRequest(http.MethodPost, "/edit_profile", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusSeeOther {
				assert.Equal(t, "/user/susan2", resp.Header.Get(fiber.HeaderLocation))
				m.users.AssertCalled(t, "UpdateProfile", mock.Anything, uint(1), repository.ProfileFields{
					Username: "susan2", FirstName: "Susan", LastName: "Smith", AboutMe: strings.Repeat("a", 140),
				})
				return
			}
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body.Fields, tt.expectedField)
			m.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
