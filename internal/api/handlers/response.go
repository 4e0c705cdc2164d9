package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/erd-studio/engine/internal/api/middleware"
	"github.com/erd-studio/engine/internal/api/types"
	"github.com/erd-studio/engine/internal/api/validators"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

const maxBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any, meta *types.Meta) {
	if meta == nil {
		meta = &types.Meta{}
	}
	meta.RequestID = middleware.GetRequestID(r.Context())
	writeJSON(w, status, types.APIResponse{Success: true, Data: data, Meta: meta})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, appErr.HTTPStatus(err), types.APIResponse{
		Success: false,
		Error:   types.FromAppError(err),
		Meta:    &types.Meta{RequestID: middleware.GetRequestID(r.Context())},
	})
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid json")
	}
	return validate(v, dst)
}

func validate(v *validator.Validate, dst any) error {
	if err := v.Struct(dst); err != nil {
		return appErr.New(appErr.CodeInvalid, validators.Message(err))
	}
	return nil
}
