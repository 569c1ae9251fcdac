package router

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

// maxJSONBody caps decoded request bodies. The largest JSON payload is a
// profile update.
const maxJSONBody = 64 << 10

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request

	w http.ResponseWriter
}

// GetParam reads a path parameter stored by httprouter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// PathID parses a positive numeric path parameter such as a principal id.
func (r *Request) PathID(key string) (int64, error) {
	id, err := strconv.ParseInt(r.GetParam(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, goerror.NewInvalidFormat(key + " must be a positive integer")
	}
	return id, nil
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// QueryInt32 returns 0 when key is absent.
func (r *Request) QueryInt32(key string) (int32, error) {
	raw := r.GetQuery(key)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, goerror.NewInvalidFormat(key + " must be an integer")
	}
	return int32(v), nil
}

// DecodeBody decodes exactly one JSON object into dst. Unknown fields,
// trailing data and bodies over maxJSONBody are rejected.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(r.w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if dec.More() {
		return goerror.NewInvalidFormat("request body must contain a single JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat("request body must contain a single JSON object")
	}

	return nil
}

func bodyError(err error) error {
	var (
		tooLarge  *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &tooLarge):
		return goerror.NewInvalidFormat("request body is too large")
	case errors.Is(err, io.EOF):
		return goerror.NewInvalidFormat("request body is required")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return goerror.NewInvalidFormat(typeErr.Field + " has the wrong type")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return goerror.NewInvalidFormat("request body is not valid JSON")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return goerror.NewInvalidFormat("unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field "))
	default:
		return goerror.NewInvalidFormat()
	}
}

// Upload is a multipart file part streamed from the request body.
type Upload struct {
	io.Reader
	part io.Closer

	// ContentType is sniffed from the first bytes, falling back to the
	// part's declared type when sniffing is inconclusive.
	ContentType string
}

func (u *Upload) Close() error {
	return u.part.Close()
}

// FormFile streams the part named name without buffering the whole body.
// Parts before it are discarded.
func (r *Request) FormFile(name string) (*Upload, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, goerror.NewInvalidFormat("content type must be multipart/form-data")
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, goerror.NewInvalidFormat(name + " file is required")
		}
		if err != nil {
			return nil, goerror.NewInvalidFormat()
		}

		if part.FormName() != name {
			_, errCopy := io.Copy(io.Discard, part)
			if errClose := part.Close(); errCopy == nil && errClose != nil {
				errCopy = errClose
			}
			if errCopy != nil {
				return nil, goerror.NewInvalidFormat()
			}
			continue
		}

		br := bufio.NewReaderSize(part, sniffLen)
		head, _ := br.Peek(sniffLen)
		contentType := http.DetectContentType(head)
		if contentType == "application/octet-stream" {
			contentType = part.Header.Get("Content-Type")
		}
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mt
		}

		return &Upload{Reader: br, part: part, ContentType: contentType}, nil
	}
}
