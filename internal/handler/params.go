package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// pathID binds the {id} path parameter. On failure it writes a 400 and
// returns ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, "invalid format for parameter id: "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// pagination binds ?page= and ?limit=. Absent values fall back to the
// defaults of domain.NewPaginationParams.
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		badRequest(w, "invalid format for parameter page: "+err.Error())
		return domain.PaginationParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		badRequest(w, "invalid format for parameter limit: "+err.Error())
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// optionalUUIDQuery binds an optional uuid query parameter.
func optionalUUIDQuery(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	var v *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		badRequest(w, "invalid format for parameter "+name+": "+err.Error())
		return nil, false
	}
	return v, true
}

// decodeBody decodes the JSON request body into dst. On failure it writes
// the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", "request body is required"))
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		invalidBody(w, err)
		return false
	}
	return true
}

func paginationBody(p domain.PaginationParams, total int64) Pagination {
	return Pagination{Page: p.Page, Limit: p.Limit, Total: int(total)}
}
