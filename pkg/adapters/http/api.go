package http

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	specOnce sync.Once
	spec     *openapi3.T
	specErr  error
)

// GetSwagger returns the parsed and validated OpenAPI document of the API.
func GetSwagger() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		spec, specErr = loader.LoadFromData(rawSpec)
		if specErr != nil {
			specErr = fmt.Errorf("failed to load openapi spec: %w", specErr)
			return
		}
		if err := spec.Validate(loader.Context); err != nil {
			specErr = fmt.Errorf("invalid openapi spec: %w", err)
		}
	})
	return spec, specErr
}

// ListReportsParams defines parameters for ListReports.
type ListReportsParams struct {
	Scenario *string `form:"scenario,omitempty" json:"scenario,omitempty"`
	Outcome  *string `form:"outcome,omitempty" json:"outcome,omitempty"`
	Limit    *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /healthz)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /reports)
	ListReports(w http.ResponseWriter, r *http.Request, params ListReportsParams)
	// (GET /reports/{id})
	GetReport(w http.ResponseWriter, r *http.Request, id string)
}

// ServerInterfaceWrapper converts requests to typed handler parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetInfo(w, r)
}

func (siw *ServerInterfaceWrapper) ListReports(w http.ResponseWriter, r *http.Request) {
	var params ListReportsParams

	if err := runtime.BindQueryParameter("form", true, false, "scenario", r.URL.Query(), &params.Scenario); err != nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("invalid format for parameter scenario: %w", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "outcome", r.URL.Query(), &params.Outcome); err != nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("invalid format for parameter outcome: %w", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("invalid format for parameter limit: %w", err))
		return
	}

	siw.Handler.ListReports(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetReport(w http.ResponseWriter, r *http.Request) {
	var id string

	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("invalid format for parameter id: %w", err))
		return
	}

	siw.Handler.GetReport(w, r, id)
}

// HandlerFromMux registers the API routes of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router, errHandler func(w http.ResponseWriter, r *http.Request, err error)) http.Handler {
	wrapper := ServerInterfaceWrapper{Handler: si, ErrorHandlerFunc: errHandler}

	r.Get("/healthz", wrapper.GetHealth)
	r.Get("/info", wrapper.GetInfo)
	r.Get("/reports", wrapper.ListReports)
	r.Get("/reports/{id}", wrapper.GetReport)
	return r
}
