package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/crucial707/journal-prompt-api/internal/metrics"
	"github.com/crucial707/journal-prompt-api/internal/middleware"
	"github.com/crucial707/journal-prompt-api/internal/repo"
)

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "This is the Journal Prompt API"

var validate = newValidator()

var errTrailingData = errors.New("unexpected data after JSON body")

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type PromptHandler struct {
	Repo *repo.PromptRepo
}

// createPromptInput is the POST /prompts body. Text is a pointer so that a missing
// field can be told apart from an empty string.
type createPromptInput struct {
	Text *string `json:"text" validate:"required"`
}

//
// ==========================
// Root
// ==========================
//

func (h *PromptHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

//
// ==========================
// Random Prompt
// ==========================
//

// Random responds with one stored prompt, or JSON null when there are none.
func (h *PromptHandler) Random(w http.ResponseWriter, r *http.Request) {
	prompt, err := h.Repo.Random(r.Context())
	if err != nil {
		slog.Error("fetch random prompt", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	// A nil *models.Prompt encodes as null.
	writeJSON(w, http.StatusOK, prompt)
}

//
// ==========================
// Create Prompt
// ==========================
//

// CreatePrompt stores the trimmed text. It must be mounted behind BasicAuth.
func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeCreatePrompt(w, r)
	if !ok {
		return
	}

	text := strings.TrimSpace(*input.Text)
	prompt, err := h.Repo.Create(r.Context(), text)
	if err != nil {
		slog.Error("create prompt", "error", err)
		JSONError(w, "failed to create prompt", http.StatusInternalServerError)
		return
	}

	creds, _ := middleware.CredentialsFromContext(r.Context())
	slog.Info("prompt created", "username", creds.Username, "id", prompt.ID, "text", prompt.Text)
	metrics.IncPromptsCreated()

	writeJSON(w, http.StatusOK, prompt)
}

// decodeCreatePrompt parses and validates the request body, writing the 4xx
// response itself when the body is rejected.
func decodeCreatePrompt(w http.ResponseWriter, r *http.Request) (createPromptInput, bool) {
	var input createPromptInput

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&input)
	if err == nil {
		// The body must hold exactly one JSON value.
		if _, err = dec.Token(); err == io.EOF {
			err = nil
		} else if err == nil {
			err = errTrailingData
		}
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		var sizeErr *http.MaxBytesError
		switch {
		case errors.As(err, &sizeErr):
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
		case errors.As(err, &typeErr) && typeErr.Field == "text":
			JSONValidationError(w, "validation failed",
				map[string]string{"text": "must be a string"}, http.StatusBadRequest)
		default:
			JSONError(w, "invalid JSON", http.StatusBadRequest)
		}
		return input, false
	}

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return input, false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return input, false
	}

	return input, true
}
