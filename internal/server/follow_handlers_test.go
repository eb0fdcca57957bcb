package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFollowRoutes(t *testing.T) {
	tests := []struct {
		name             string
		path             string
		mockSetup        func(m *mocks)
		expectedLocation string
		expectedCategory string
		rejected         bool
	}{
		{
			name: "Follow",
			path: "/follow/john",
			mockSetup: func(m *mocks) {
				m.follows.On("Follow", mock.Anything, uint(1), uint(2)).Return(nil)
			},
			expectedLocation: "/user/john",
			expectedCategory: categorySuccess,
		},
		{
			name: "Unfollow",
			path: "/unfollow/john",
			mockSetup: func(m *mocks) {
				m.follows.On("Unfollow", mock.Anything, uint(1), uint(2)).Return(nil)
			},
			expectedLocation: "/user/john",
			expectedCategory: categoryWarning,
		},
		{
			name:             "Follow self",
			path:             "/follow/susan",
			mockSetup:        func(*mocks) {},
			expectedLocation: "/user/susan",
			expectedCategory: categoryWarning,
			rejected:         true,
		},
		{
			name:             "Unfollow self",
			path:             "/unfollow/susan",
			mockSetup:        func(*mocks) {},
			expectedLocation: "/user/susan",
			expectedCategory: categoryWarning,
			rejected:         true,
		},
		{
			name:             "Follow unknown",
			path:             "/follow/ghost",
			mockSetup:        func(*mocks) {},
			expectedLocation: "/index",
			expectedCategory: categoryWarning,
			rejected:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m, app := newMockServer()
			app.Get("/follow/:username", s.Follow)
			app.Get("/unfollow/:username", s.Unfollow)

			m.users.On("GetByUsername", mock.Anything, "susan").Return(&models.User{ID: 1, Username: "susan"}, nil)
			m.users.On("GetByUsername", mock.Anything, "john").Return(&models.User{ID: 2, Username: "john"}, nil)
			m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, models.NewNotFoundError("User", "ghost"))
			tt.mockSetup(m)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.expectedLocation, resp.Header.Get(fiber.HeaderLocation))

			var body notice
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedCategory, body.Category)
			assert.NotEmpty(t, body.Message)

			if tt.rejected {
				m.follows.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
				m.follows.AssertNotCalled(t, "Unfollow", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
