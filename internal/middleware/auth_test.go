package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/middleware"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSessionChecker := NewMocksessionChecker(ctrl)
	authMiddleware := middleware.NewAuthMiddlewareHandler(
		"serviceSecret",
		mockSessionChecker,
	)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
		mockUserID         string
		mockUserIDErr      error
		expectedCtxUserID  string
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/auth/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "VersionWithoutToken",
			path:               "/version",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "NotAllowedPathWithoutToken",
			path:               "/activities/user/u-1",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Preflight",
			path:               "/segments/best1km",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ValidToken",
			path:               "/secure/resource",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			mockUserID:         "u-55",
			expectedCtxUserID:  "u-55",
		},
		{
			name:               "InvalidToken",
			path:               "/secure/resource",
			method:             "GET",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
			mockUserIDErr:      auth.ErrNotLoggedIn,
		},
		{
			name:               "BatchRequestValidSecret",
			path:               "/overtraining/batch",
			method:             "POST",
			token:              "serviceSecret",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "BatchRequestInvalidSecret",
			path:               "/overtraining/batch",
			method:             "POST",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			assert.NoError(t, err)
			if tc.token != "" {
				req.Header.Add(middleware.AuthTokenHeader, tc.token)
			}

			if tc.path == "/secure/resource" {
				mockSessionChecker.EXPECT().
					UserID(gomock.Any(), tc.token).
					Return(tc.mockUserID, tc.mockUserIDErr).AnyTimes()
			}

			var ctxUserID string
			rr := httptest.NewRecorder()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxUserID = auth.UserIDFromContext(r.Context())
			})
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedCtxUserID != "" {
				assert.Equal(t, tc.expectedCtxUserID, ctxUserID)
			}
		})
	}
}
