package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pdf"
)

const (
	// ResumeField is the only multipart field that may carry a file.
	ResumeField = "resume"
	// DefaultMaxUpload bounds the resume size when none is configured.
	DefaultMaxUpload = 10 << 20

	maxFormBytes  = 1 << 20
	maxFieldBytes = 64 << 10
	maxFields     = 100
)

// Intake error codes
const (
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeUnexpectedFile  = "UNEXPECTED_FILE"
	CodeTooManyFiles    = "TOO_MANY_FILES"
	CodeInvalidBody     = "INVALID_BODY"
)

// intakeError rejects a request body before validation
type intakeError struct {
	Status  int
	Title   string
	Code    string
	Message string
}

func (e *intakeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errFileTooLarge(limit int64) *intakeError {
	return &intakeError{
		Status:  http.StatusRequestEntityTooLarge,
		Title:   "File too large",
		Code:    CodeFileTooLarge,
		Message: fmt.Sprintf("Resume file size must be less than %dMB", limit>>20),
	}
}

var errInvalidFileType = &intakeError{
	Status:  http.StatusUnsupportedMediaType,
	Title:   "Invalid file type",
	Code:    CodeInvalidFileType,
	Message: "Only PDF files are allowed for resume upload",
}

func errInvalidBody(format string, args ...any) *intakeError {
	return &intakeError{
		Status:  http.StatusBadRequest,
		Title:   "Invalid request body",
		Code:    CodeInvalidBody,
		Message: fmt.Sprintf(format, args...),
	}
}

// body is a decoded request: raw field values and at most one attachment
type body struct {
	Fields     map[string]any
	Attachment *model.Attachment
}

// decoder reads submission bodies. Files are held in memory only and are
// checked for size, declared type and content before anything else runs.
type decoder struct {
	allowFile bool
	maxUpload int64
}

func (d decoder) decode(w http.ResponseWriter, r *http.Request) (*body, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		if r.ContentLength > 0 {
			return nil, errInvalidBody("Content-Type header is required")
		}
		return &body{Fields: map[string]any{}}, nil
	}

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, errInvalidBody("malformed Content-Type header")
	}

	switch mediaType {
	case "application/json":
		return d.decodeJSON(w, r)
	case "application/x-www-form-urlencoded":
		return d.decodeForm(w, r)
	case "multipart/form-data":
		if params["boundary"] == "" {
			return nil, errInvalidBody("multipart boundary is missing")
		}
		return d.decodeMultipart(w, r)
	default:
		return nil, errInvalidBody("unsupported content type %q", mediaType)
	}
}

func (d decoder) decodeJSON(w http.ResponseWriter, r *http.Request) (*body, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	fields := map[string]any{}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return &body{Fields: map[string]any{}}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errInvalidBody("request body is too large")
		}
		return nil, errInvalidBody("request body must be a JSON object")
	}
	return &body{Fields: fields}, nil
}

func (d decoder) decodeForm(w http.ResponseWriter, r *http.Request) (*body, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, errInvalidBody("malformed form body")
	}

	fields := make(map[string]any, len(r.PostForm))
	for k, v := range r.PostForm {
		fields[k] = v
	}
	return &body{Fields: fields}, nil
}

func (d decoder) decodeMultipart(w http.ResponseWriter, r *http.Request) (*body, error) {
	// The hard cap leaves room for text fields and part headers on top of a
	// full-size file.
	r.Body = http.MaxBytesReader(w, r.Body, d.maxUpload+maxFormBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errInvalidBody("malformed multipart body")
	}

	values := map[string][]string{}
	var att *model.Attachment
	count := 0

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, d.readError(err)
		}

		name := part.FormName()
		if part.FileName() == "" {
			if count++; count > maxFields {
				return nil, errInvalidBody("too many form fields")
			}
			v, err := readField(part)
			if err != nil {
				return nil, d.readError(err)
			}
			values[name] = append(values[name], v)
			continue
		}

		switch {
		case !d.allowFile || name != ResumeField:
			return nil, &intakeError{
				Status:  http.StatusBadRequest,
				Title:   "Unexpected file",
				Code:    CodeUnexpectedFile,
				Message: fmt.Sprintf("File field %q is not accepted", name),
			}
		case att != nil:
			return nil, &intakeError{
				Status:  http.StatusBadRequest,
				Title:   "Too many files",
				Code:    CodeTooManyFiles,
				Message: "Only one resume file may be uploaded",
			}
		}

		att, err = d.readFile(part.FileName(), part.Header.Get("Content-Type"), part)
		if err != nil {
			return nil, err
		}
	}

	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return &body{Fields: fields, Attachment: att}, nil
}

func (d decoder) readFile(fileName, contentType string, r io.Reader) (*model.Attachment, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/pdf" {
		return nil, errInvalidFileType
	}

	data, err := io.ReadAll(io.LimitReader(r, d.maxUpload+1))
	if err != nil {
		return nil, d.readError(err)
	}
	if int64(len(data)) > d.maxUpload {
		return nil, errFileTooLarge(d.maxUpload)
	}
	if len(data) == 0 {
		return nil, errInvalidBody("resume file is empty")
	}
	if !pdf.IsPDF(data) {
		return nil, errInvalidFileType
	}

	// Page count is informational; unparsable documents still pass.
	pages, _ := pdf.PageCount(data)

	return &model.Attachment{
		FileName:    baseName(fileName),
		ContentType: mediaType,
		Data:        data,
		Pages:       pages,
	}, nil
}

func (d decoder) readError(err error) error {
	var ie *intakeError
	if errors.As(err, &ie) {
		return ie
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errFileTooLarge(d.maxUpload)
	}
	return errInvalidBody("malformed multipart body")
}

func readField(r io.Reader) (string, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxFieldBytes+1))
	if err != nil {
		return "", err
	}
	if n > maxFieldBytes {
		return "", errInvalidBody("form field is too large")
	}
	return buf.String(), nil
}

// baseName strips any client-side directory from an uploaded file name
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "resume.pdf"
	}
	return name
}
