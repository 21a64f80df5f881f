package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/eastsecure/internal/server/auth"
)

func (h *handler) createServiceRequest(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var req serviceRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	sr, err := h.requests.Create(r.Context(), id.ID, req.Service, req.Description, req.Priority)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"request": toServiceRequestDTO(sr)})
}

func (h *handler) listServiceRequests(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	list, err := h.requests.List(r.Context(), id.ID)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	out := make([]serviceRequestDTO, 0, len(list))
	for i := range list {
		out = append(out, toServiceRequestDTO(&list[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": out})
}

func (h *handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	stats, err := h.requests.Dashboard(r.Context(), id.ID)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": toStatsDTO(stats)})
}

func (h *handler) createScan(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	scan, err := h.scans.CreateScan(r.Context(), id.ID, req.URL, req.ScanType)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"scanId":  scan.ID,
		"message": "Scan initiated successfully",
		"status":  scan.Status,
	})
}

// getScans returns one scan when scanId is given, otherwise the caller's
// scan history.
func (h *handler) getScans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.FromContext(ctx)

	if scanID := r.URL.Query().Get("scanId"); scanID != "" {
		scan, err := h.scans.GetScan(ctx, scanID, id.ID)
		if err != nil {
			writeError(ctx, w, h.logger, err)
			return
		}

		dto := toScanDTO(scan)
		if scan.ReportKey != "" {
			u, err := h.scans.ReportURL(ctx, scan)
			if err != nil {
				h.logger.Warn(ctx, "presign report failed", "scan_id", scan.ID, "error", err)
			} else {
				dto.ReportURL = u
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"scan": dto})
		return
	}

	list, err := h.scans.ListScans(ctx, id.ID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	out := make([]scanDTO, 0, len(list))
	for i := range list {
		out = append(out, toScanDTO(&list[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": out})
}
