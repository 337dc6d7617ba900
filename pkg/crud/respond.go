package crud

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/export"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/tabular"
	"github.com/oneacrefund/fieldops-console/pkg/workflow"
)

// WorkflowKey scopes a record-action workflow slot to the calling
// operator's session, so overlapping requests from one dashboard contend
// on the same slot while separate operators never block each other.
func WorkflowKey(r *http.Request) string {
	if session, ok := composables.UseSession(r.Context()); ok {
		return session.Token
	}
	return r.RemoteAddr
}

// TablePayload is the JSON body of every list endpoint.
type TablePayload[T any] struct {
	Rows       []T  `json:"rows"`
	TotalRows  int  `json:"total_rows"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	Loading    bool `json:"loading"`
}

// WriteTable serializes an engine view with one-indexed pagination.
func WriteTable[T any](w http.ResponseWriter, view tabular.View[T], loading bool) error {
	return httpapi.WriteSuccess(w, &TablePayload[T]{
		Rows:       view.Rows,
		TotalRows:  view.TotalRows,
		Page:       view.DisplayPage(),
		TotalPages: view.TotalPages,
		HasPrev:    view.HasPrev(),
		HasNext:    view.HasNext(),
		Loading:    loading,
	})
}

// WriteExcel streams an xlsx attachment for the given table.
func WriteExcel(w http.ResponseWriter, resource string, table export.Table) error {
	data, err := export.Excel(table)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+export.Filename(resource)+"\"")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

// WriteUpstreamError maps API client failures onto the console's JSON
// error surface, carrying the backend's own message through on rejections.
func WriteUpstreamError(w http.ResponseWriter, err error) error {
	switch {
	case apiclient.IsMissingCredential(err):
		return httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	case apiclient.IsNotFound(err):
		return httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	default:
		if rejection, ok := apiclient.IsRejection(err); ok {
			return httpapi.WriteError(w, rejection.StatusCode, "UPSTREAM_REJECTED", rejection.Message, nil)
		}
		return httpapi.WriteError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "the registration service could not be reached", nil)
	}
}

// WriteWorkflowError maps workflow failures onto the JSON error surface:
// validation problems carry the failed fields, unconfirmed or busy actions
// conflict, anything else is an upstream failure.
func WriteWorkflowError(w http.ResponseWriter, err error) error {
	var validationErr *workflow.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "VALIDATION_FAILED",
			"message": "required fields are missing",
			"fields":  validationErr.Fields,
		})
	case errors.Is(err, workflow.ErrNotConfirmed):
		return httpapi.WriteError(w, http.StatusConflict, "CONFIRMATION_REQUIRED", "the action must be confirmed first", nil)
	case errors.Is(err, workflow.ErrBusy):
		return httpapi.WriteError(w, http.StatusConflict, "WORKFLOW_BUSY", "another action is already in progress", nil)
	default:
		return WriteUpstreamError(w, err)
	}
}

// BulkOutcome reports a per-id bulk action: which ids the backend
// confirmed and which it refused.
type BulkOutcome struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

func (o *BulkOutcome) Ok() bool {
	return len(o.Failed) == 0
}
