package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stayflow-pms/backend/internal/api/middleware"
	"github.com/stayflow-pms/backend/internal/importer"
	"github.com/stayflow-pms/backend/internal/websocket"
)

// maxImportSize caps uploaded CSV files at 10 MiB.
const maxImportSize = 10 << 20

// ImportProperties accepts a multipart CSV upload ("file" field) and bulk
// upserts property rows. Partial failures come back in the result body;
// only unreadable uploads fail the request.
func ImportProperties(imp *importer.Importer, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

		file, _, err := r.FormFile("file")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Missing 'file' upload")
			return
		}
		defer file.Close()

		result, err := imp.Import(r.Context(), file)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}

		if hub != nil {
			broadcaster := websocket.NewEventBroadcaster(hub)
			broadcaster.BroadcastImportCompleted(result.PropertiesCount, len(result.Errors))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
