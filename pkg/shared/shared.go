package shared

import (
	"net/http"

	"github.com/go-playground/form"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Decoder is the shared form/query decoder. Mode keeps unknown keys from
// failing the whole decode, matching how screens pass extra UI-only params.
var Decoder = newDecoder()

func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetMode(form.ModeExplicit)
	return d
}

// ParseID extracts the {id} path variable from the request.
func ParseID(r *http.Request) (string, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok || id == "" {
		return "", errors.New("id path variable missing")
	}
	return id, nil
}
