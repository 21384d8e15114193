package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

const maxBodyBytes = 1 << 20

// respondJSON writes data with the given status
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondOK writes the {"ok":true} acknowledgement
func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeJSON reads a bounded JSON body into dst. An empty body decodes as {}.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return pkgerrors.NewValidationError("failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return pkgerrors.NewValidationError("request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var fieldErr *fieldError
		if errors.As(err, &fieldErr) {
			return pkgerrors.NewValidationError(fieldErr.msg)
		}
		return pkgerrors.NewValidationError("Invalid request body: " + err.Error())
	}
	return nil
}

// fieldError carries a client-facing message out of a custom unmarshaler
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

// optionalInt accepts null, "", a number or a numeric string
type optionalInt struct {
	Value *int
}

func (o *optionalInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		o.Value = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			o.Value = nil
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return &fieldError{msg: "strength must be 1-5"}
	}
	v := int(f)
	o.Value = &v
	return nil
}

// flexBool accepts booleans, numbers and the strings "true"/"false"/"1"/"0"
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(raw) {
	case "true", "1":
		*b = true
		return nil
	case "false", "0", "", "null":
		*b = false
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*b = f != 0
		return nil
	}
	return &fieldError{msg: fmt.Sprintf("directed must be a boolean, got %s", raw)}
}

// ask dispatches a query and asserts the handler's result type
func ask[R any](ctx context.Context, queryBus *querybus.QueryBus, query querybus.Query) (R, error) {
	var zero R
	result, err := queryBus.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("unexpected result type %T for %T", result, query)
	}
	return typed, nil
}
