package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		db     Pinger
		status int
		body   string
	}{
		{"no db", nil, http.StatusOK, "ok"},
		{"db up", fakePinger{}, http.StatusOK, "ok"},
		{"db down", fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthcheck", NewHealthHandler(tc.db).HealthCheck)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.body, rec.Body.String())
		})
	}
}

func TestValidDifficultyTag(t *testing.T) {
	require.NoError(t, RegisterValidators())
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		var q struct {
			D string `form:"d" binding:"omitempty,difficulty"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			respondBindError(c, err)
			return
		}
		c.String(http.StatusOK, q.D)
	})
	for raw, want := range map[string]int{"": 200, "easy": 200, "HARD": 200, "extreme": 400} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?d="+raw, nil))
		assert.Equal(t, want, rec.Code, raw)
	}
}

func TestRegisterOnRejectsForeignEngine(t *testing.T) {
	err := registerOn(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want *validator.Validate")

	v := validator.New()
	require.NoError(t, registerOn(v))
	type body struct {
		D string `validate:"required,difficulty"`
	}
	assert.NoError(t, v.Struct(body{D: "Medium"}))
	assert.Error(t, v.Struct(body{D: "extreme"}))
}
