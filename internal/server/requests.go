package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"startiq/internal/core"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies. Registration profiles are the largest.
const maxBodyBytes = 1 << 20

// validatedRequest is a request body with a single message reported when
// any required field is missing.
type validatedRequest interface {
	requiredMessage() string
}

type analyseStartupRequest struct {
	StartupID string `json:"startupID" validate:"required"`
}

func (analyseStartupRequest) requiredMessage() string { return "startupID is required" }

type analyseInvestorRequest struct {
	InvestorID string `json:"investorID" validate:"required"`
}

func (analyseInvestorRequest) requiredMessage() string { return "investorID is required" }

type dealNoteRequest struct {
	InvestorUID string `json:"investorUID" validate:"required"`
	StartupID   string `json:"startupID" validate:"required"`
}

func (dealNoteRequest) requiredMessage() string { return "investorUID and startupID are required" }

type scoreRequest struct {
	StartupID string `json:"startupID" validate:"required"`
}

func (scoreRequest) requiredMessage() string { return "startupID is required" }

type registerRequest struct {
	UID  string         `json:"uid" validate:"required"`
	Role string         `json:"role" validate:"required"`
	Data map[string]any `json:"data"`
}

func (registerRequest) requiredMessage() string { return "uid and role are required" }

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into req and validates it. An empty body
// decodes as an empty object.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, req validatedRequest) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return core.NewValidationError("body", "Invalid JSON body")
	}

	if err := s.validate.Struct(req); err != nil {
		field := ""
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return core.NewValidationError(field, req.requiredMessage())
	}
	return nil
}
