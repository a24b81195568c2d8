package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/http/response"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom binding tags used by request structs.
// A failure here means every tagged request would be rejected, so callers
// should treat it as fatal at startup.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerOn(binding.Validator.Engine())
	})
	return registerErr
}

func registerOn(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding engine is %T, want *validator.Validate", engine)
	}
	if err := v.RegisterValidation("difficulty", validDifficulty); err != nil {
		return fmt.Errorf("register difficulty tag: %w", err)
	}
	return nil
}

// validDifficulty accepts an empty value; pair with required when needed.
func validDifficulty(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.TrimSpace(raw) == "" {
		return true
	}
	_, err := types.ParseDifficulty(raw)
	return err == nil
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, response.ErrorEnvelope{Error: response.APIError{
			Message: "invalid request body",
			Code:    "validation",
			Details: map[string]any{"fields": fields},
		}})
		return
	}
	response.RespondError(c, http.StatusBadRequest, "validation", err)
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
