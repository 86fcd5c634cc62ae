package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sociograph/auth-service/internal/apperr"
	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/service"
)

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func successEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.SuccessResponse {
	t.Helper()
	var resp dto.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func signUpBody() map[string]any {
	return map[string]any{
		"username":        "testuser",
		"email":           "alice@example.com",
		"password":        "Password1",
		"confirmPassword": "Password1",
		"gender":          "female",
		"DOB":             "1995-04-12",
	}
}

func TestSignUpHandler(t *testing.T) {
	t.Run("created with envelope", func(t *testing.T) {
		svc := &stubAuthService{
			signUpFn: func(_ context.Context, req *dto.SignUpRequest) (*service.SignUpResult, error) {
				assert.Equal(t, "alice@example.com", req.Email)
				return &service.SignUpResult{
					Account: &dto.AccountInfo{Email: req.Email, Status: string(domain.StatusPending)},
				}, nil
			},
		}
		router := gin.New()
		router.POST("/signup", NewAuthHandler(svc).SignUp)

		w := postJSON(t, router, "/signup", signUpBody())

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := successEnvelope(t, w)
		assert.True(t, resp.Meta.Success)
		assert.Equal(t, http.StatusCreated, resp.Meta.StatusCode)
		assert.Equal(t, "registered successfully, now please confirm your email", resp.Data.Message)
	})

	t.Run("merged oauth account gets a different message", func(t *testing.T) {
		svc := &stubAuthService{
			signUpFn: func(context.Context, *dto.SignUpRequest) (*service.SignUpResult, error) {
				return &service.SignUpResult{
					Account:         &dto.AccountInfo{Status: string(domain.StatusActive)},
					MergedIntoOAuth: true,
				}, nil
			},
		}
		router := gin.New()
		router.POST("/signup", NewAuthHandler(svc).SignUp)

		w := postJSON(t, router, "/signup", signUpBody())

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, successEnvelope(t, w).Data.Message, "now you can login")
	})

	t.Run("binding failure is a validation error", func(t *testing.T) {
		router := gin.New()
		router.POST("/signup", NewAuthHandler(&stubAuthService{}).SignUp)

		body := signUpBody()
		delete(body, "email")
		w := postJSON(t, router, "/signup", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation failed", errorEnvelope(t, w).Error.Message)
	})

	t.Run("conflict passes through", func(t *testing.T) {
		svc := &stubAuthService{
			signUpFn: func(context.Context, *dto.SignUpRequest) (*service.SignUpResult, error) {
				return nil, apperr.Conflict("account already exists")
			},
		}
		router := gin.New()
		router.POST("/signup", NewAuthHandler(svc).SignUp)

		w := postJSON(t, router, "/signup", signUpBody())

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := errorEnvelope(t, w)
		assert.False(t, resp.Meta.Success)
		assert.Equal(t, "account already exists", resp.Error.Message)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("returns the token pair", func(t *testing.T) {
		svc := &stubAuthService{
			loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
				return &service.LoginResult{
					Pair: &domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
				}, nil
			},
		}
		router := gin.New()
		router.POST("/login", NewAuthHandler(svc).Login)

		w := postJSON(t, router, "/login", map[string]string{
			"email": "alice@example.com", "password": "Password1",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		data := successEnvelope(t, w).Data.Data.(map[string]any)
		assert.Equal(t, "acc", data["accessToken"])
		assert.Equal(t, "ref", data["refreshToken"])
	})

	t.Run("two-factor branch returns only the limited token", func(t *testing.T) {
		svc := &stubAuthService{
			loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
				return &service.LoginResult{
					TwoFactorRequired: true,
					TwoFactorToken:    "limited",
				}, nil
			},
		}
		router := gin.New()
		router.POST("/login", NewAuthHandler(svc).Login)

		w := postJSON(t, router, "/login", map[string]string{
			"email": "alice@example.com", "password": "Password1",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := successEnvelope(t, w)
		assert.Contains(t, resp.Data.Message, "login code")
		data := resp.Data.Data.(map[string]any)
		assert.Equal(t, "limited", data["twoFactorToken"])
		assert.NotContains(t, data, "refreshToken")
	})

	t.Run("unexpected error becomes a generic 500", func(t *testing.T) {
		svc := &stubAuthService{
			loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
				return nil, errors.New("mongo fell over")
			},
		}
		router := gin.New()
		router.POST("/login", NewAuthHandler(svc).Login)

		w := postJSON(t, router, "/login", map[string]string{
			"email": "alice@example.com", "password": "Password1",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := errorEnvelope(t, w)
		assert.Equal(t, "something went wrong", resp.Error.Message)
		assert.NotContains(t, w.Body.String(), "mongo fell over")
	})
}

func TestForgetPasswordHandler(t *testing.T) {
	svc := &stubAuthService{
		forgetPasswordFn: func(_ context.Context, email string) (string, error) {
			assert.Equal(t, "alice@example.com", email)
			return "recovery-token", nil
		},
	}
	router := gin.New()
	router.POST("/forget-password", NewAuthHandler(svc).ForgetPassword)

	w := postJSON(t, router, "/forget-password", map[string]string{"email": "alice@example.com"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := successEnvelope(t, w)
	assert.Equal(t, "please check your email", resp.Data.Message)
	data := resp.Data.Data.(map[string]any)
	assert.Equal(t, "recovery-token", data["recoveryToken"])
}
