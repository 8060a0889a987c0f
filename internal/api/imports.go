package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"skyline/opsboard/internal/auth"
	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/models/dtos"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/parsers"
	"skyline/opsboard/internal/services"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

var (
	errBadRequest = errors.New("bad request")
	errMalformed  = errors.New("malformed request body")
)

// ImportRunner is the part of the import service the handlers call.
type ImportRunner interface {
	Validate(ctx context.Context, in services.ImportInput) (interface{}, error)
	Commit(ctx context.Context, in services.ImportInput) (*dtos.CommitResult, error)
}

type ImportLogLister interface {
	List(ctx context.Context, dataType string, limit int) ([]gormModels.ImportLog, error)
}

// ValidateImportHandler handles POST /api/v1/import/{kind}/validate
func ValidateImportHandler(svc ImportRunner, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		in, err := readImportInput(w, r, maxBytes)
		if err != nil {
			handleImportError(w, initTime, err, nil)
			return
		}

		result, err := svc.Validate(r.Context(), in)
		if err != nil {
			handleImportError(w, initTime, err, nil)
			return
		}

		common.RespondSuccess(w, initTime, "Validation complete", result)
	}
}

// CommitImportHandler handles POST /api/v1/import/{kind}/commit
func CommitImportHandler(svc ImportRunner, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		in, err := readImportInput(w, r, maxBytes)
		if err != nil {
			handleImportError(w, initTime, err, nil)
			return
		}
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			in.UserID = claims.UserID()
		}

		result, err := svc.Commit(r.Context(), in)
		if err != nil {
			handleImportError(w, initTime, err, result)
			return
		}

		common.RespondSuccess(w, initTime, "Import committed", result)
	}
}

// ListImportLogsHandler handles GET /api/v1/import/logs
func ListImportLogsHandler(logs ImportLogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		dataType := r.URL.Query().Get("dataType")
		if dataType != "" {
			kind, ok := constants.ParseEntityKind(dataType)
			if !ok {
				handleImportError(w, initTime, services.ErrUnknownKind, nil)
				return
			}
			dataType = string(kind)
		}

		limit := defaultLogLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := cast.ToIntE(raw)
			if err != nil || n <= 0 {
				common.RespondError(w, initTime, nil, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = min(n, maxLogLimit)
		}

		entries, err := logs.List(r.Context(), dataType, limit)
		if err != nil {
			common.RespondError(w, initTime, nil, "Failed to list import logs", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "", entries)
	}
}

// readImportInput accepts either a JSON body or a multipart upload with the
// payload in the "file" part.
func readImportInput(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.ImportInput, error) {
	var in services.ImportInput

	kind, ok := constants.ParseEntityKind(chi.URLParam(r, "kind"))
	if !ok {
		return in, fmt.Errorf("%w: %q", services.ErrUnknownKind, chi.URLParam(r, "kind"))
	}
	in.Kind = kind

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var req dtos.ImportRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		content, fileName, err := readMultipart(r, maxBytes, &req)
		if err != nil {
			return in, err
		}
		in.Content = content
		req.FileName = &fileName
		if req.Source == "" {
			req.Source = string(constants.ChannelFile)
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return in, malformed(err)
		}
		in.Content = []byte(req.Content)
	}

	in.Format = constants.Format(strings.ToLower(strings.TrimSpace(req.Format)))
	if in.Format == "" && req.FileName != nil {
		if f, ok := parsers.FormatFromFileName(*req.FileName); ok {
			in.Format = f
		}
	}

	channel := constants.ChannelAPI
	if req.Source != "" {
		if channel, ok = constants.ParseImportChannel(req.Source); !ok {
			return in, fmt.Errorf("%w: unknown source %q", errBadRequest, req.Source)
		}
	}
	in.Channel = channel

	if req.ConflictMode != "" {
		mode, ok := constants.ParseConflictMode(req.ConflictMode)
		if !ok {
			return in, fmt.Errorf("%w: unknown conflictMode %q", errBadRequest, req.ConflictMode)
		}
		in.ConflictMode = mode
	}
	if req.DefaultSource != "" {
		src := constants.TrustSource(req.DefaultSource)
		if !src.Importable() {
			return in, fmt.Errorf("%w: defaultSource must be imported or confirmed", errBadRequest)
		}
		in.DefaultSource = src
	}

	in.FileName = req.FileName
	in.OverrideConflicts = req.OverrideConflicts
	in.Preview = req.Preview
	in.TrustPreview = req.TrustPreview
	return in, nil
}

func readMultipart(r *http.Request, maxBytes int64, req *dtos.ImportRequest) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, "", malformed(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file part", errBadRequest)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", malformed(err)
	}

	req.Format = r.FormValue("format")
	req.Source = r.FormValue("source")
	req.ConflictMode = r.FormValue("conflictMode")
	req.DefaultSource = r.FormValue("defaultSource")
	req.OverrideConflicts = cast.ToBool(r.FormValue("overrideConflicts"))
	return content, header.Filename, nil
}

// malformed keeps size violations distinct from unreadable bodies.
func malformed(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", errMalformed, err)
}

// handleImportError maps import service errors to HTTP responses. A commit
// that was refused or rolled back still returns its result.
func handleImportError(w http.ResponseWriter, initTime time.Time, err error, result *dtos.CommitResult) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		respondCode(w, initTime, constants.ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge)
	case errors.Is(err, services.ErrUnknownKind):
		respondCode(w, initTime, constants.ErrCodeUnknownKind, http.StatusBadRequest)
	case errors.Is(err, services.ErrUnsupportedFormat):
		respondCode(w, initTime, constants.ErrCodeUnsupportedFormat, http.StatusBadRequest)
	case errors.Is(err, services.ErrMissingUser):
		respondCode(w, initTime, constants.ErrCodeMissingUser, http.StatusUnauthorized)
	case errors.Is(err, services.ErrInvalidPreview), errors.Is(err, errMalformed):
		respondCode(w, initTime, constants.ErrCodeMalformedPayload, http.StatusBadRequest)
	case errors.Is(err, errBadRequest):
		common.RespondError(w, initTime, err, "", http.StatusBadRequest)
	case errors.Is(err, services.ErrCommitBlocked):
		common.RespondErrorData(w, initTime, codeMessage(constants.ErrCodeCommitBlocked), result, http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrCommitFailed):
		common.RespondErrorData(w, initTime, codeMessage(constants.ErrCodeCommitFailed), result, http.StatusInternalServerError)
	default:
		common.RespondError(w, initTime, nil, "An unexpected error occurred", http.StatusInternalServerError)
	}
}

func codeMessage(code string) string {
	return fmt.Sprintf("[%s] %s", code, constants.GetErrorMessage(code))
}

func respondCode(w http.ResponseWriter, initTime time.Time, code string, status int) {
	common.RespondError(w, initTime, nil, codeMessage(code), status)
}
