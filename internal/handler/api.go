package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of spec/openapi.yaml whose handlers
// take bound parameters. Method names are the document's operationIds.
// Operations without parameters are plain http.HandlerFunc methods on Server.
type ServerInterface interface {
	// (GET /api/ties)
	ListTies(w http.ResponseWriter, r *http.Request, params ListTiesParams)
	// (GET /api/ties/export)
	GetExport(w http.ResponseWriter, r *http.Request, params ExportParams)
	// (GET /api/ties/live)
	StreamTies(w http.ResponseWriter, r *http.Request, params StreamTiesParams)
	// (PUT /api/ties/live/{streamId})
	SwitchStream(w http.ResponseWriter, r *http.Request, streamID string)
	// (GET /api/ties/{id})
	GetTie(w http.ResponseWriter, r *http.Request, id uuid.UUID)
	// (PUT /api/ties/{id})
	UpdateTie(w http.ResponseWriter, r *http.Request, id uuid.UUID)
	// (PATCH /api/ties/{id})
	PatchTie(w http.ResponseWriter, r *http.Request, id uuid.UUID)
	// (DELETE /api/ties/{id})
	DeleteTie(w http.ResponseWriter, r *http.Request, id uuid.UUID)
	// (PUT /api/categories/{id})
	RenameCategory(w http.ResponseWriter, r *http.Request, id uuid.UUID)
	// (DELETE /api/categories/{id})
	DeleteCategory(w http.ResponseWriter, r *http.Request, id uuid.UUID)
	// (DELETE /api/images)
	DeleteImage(w http.ResponseWriter, r *http.Request, params DeleteImageParams)
}

var _ ServerInterface = (*Server)(nil)

// ListTiesParams are the query parameters of GET /api/ties.
type ListTiesParams struct {
	Q        *string
	Category *string
	Page     *int
	Limit    *int
}

// StreamTiesParams are the query parameters of GET /api/ties/live.
type StreamTiesParams struct {
	Q        *string
	Category *string
}

// ExportParams are the query parameters of GET /api/ties/export.
type ExportParams struct {
	Format *string
}

// DeleteImageParams are the query parameters of DELETE /api/images.
type DeleteImageParams struct {
	URL string
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.ParamName, e.Err)
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper binds path and query parameters, then calls Handler.
// Binding failures go to ErrorHandlerFunc.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// paramErrorHandler answers a binding failure with 400.
func paramErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	badRequest(w, err.Error())
}

func (siw *ServerInterfaceWrapper) ListTies(w http.ResponseWriter, r *http.Request) {
	var params ListTiesParams
	query := r.URL.Query()
	for name, dest := range map[string]any{
		"q":        &params.Q,
		"category": &params.Category,
		"page":     &params.Page,
		"limit":    &params.Limit,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
			return
		}
	}
	siw.Handler.ListTies(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetExport(w http.ResponseWriter, r *http.Request) {
	var params ExportParams
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "format", Err: err})
		return
	}
	siw.Handler.GetExport(w, r, params)
}

func (siw *ServerInterfaceWrapper) StreamTies(w http.ResponseWriter, r *http.Request) {
	var params StreamTiesParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", query, &params.Category); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "category", Err: err})
		return
	}
	siw.Handler.StreamTies(w, r, params)
}

func (siw *ServerInterfaceWrapper) SwitchStream(w http.ResponseWriter, r *http.Request) {
	var streamID string
	if err := bindPath(r, "streamId", &streamID); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	siw.Handler.SwitchStream(w, r, streamID)
}

func (siw *ServerInterfaceWrapper) GetTie(w http.ResponseWriter, r *http.Request) {
	siw.withID(w, r, siw.Handler.GetTie)
}

func (siw *ServerInterfaceWrapper) UpdateTie(w http.ResponseWriter, r *http.Request) {
	siw.withID(w, r, siw.Handler.UpdateTie)
}

func (siw *ServerInterfaceWrapper) PatchTie(w http.ResponseWriter, r *http.Request) {
	siw.withID(w, r, siw.Handler.PatchTie)
}

func (siw *ServerInterfaceWrapper) DeleteTie(w http.ResponseWriter, r *http.Request) {
	siw.withID(w, r, siw.Handler.DeleteTie)
}

func (siw *ServerInterfaceWrapper) RenameCategory(w http.ResponseWriter, r *http.Request) {
	siw.withID(w, r, siw.Handler.RenameCategory)
}

func (siw *ServerInterfaceWrapper) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	siw.withID(w, r, siw.Handler.DeleteCategory)
}

func (siw *ServerInterfaceWrapper) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var params DeleteImageParams
	if err := runtime.BindQueryParameter("form", true, true, "url", r.URL.Query(), &params.URL); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "url", Err: err})
		return
	}
	siw.Handler.DeleteImage(w, r, params)
}

// withID binds the {id} path parameter as a UUID and calls next.
func (siw *ServerInterfaceWrapper) withID(w http.ResponseWriter, r *http.Request, next func(http.ResponseWriter, *http.Request, uuid.UUID)) {
	var id uuid.UUID
	if err := bindPath(r, "id", &id); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	next(w, r, id)
}

func bindPath(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return &InvalidParamFormatError{ParamName: name, Err: err}
	}
	return nil
}

// deref returns *p, or "" when p is nil.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
