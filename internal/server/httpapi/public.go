package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/gorilla/mux"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	inq, err := h.contact.Submit(r.Context(), models.Inquiry{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Service: req.Service,
		Message: req.Message,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Inquiry submitted successfully",
		"id":      inq.ID,
	})
}

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.PostFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    queryInt(q.Get("limit")),
		Offset:   queryInt(q.Get("offset")),
	}

	page, err := h.blog.List(r.Context(), f)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts": toPostDTOs(page.Posts),
		"pagination": paginationDTO{
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
	})
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.blog.Categories(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{Category: c.Category, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, related, err := h.blog.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post":         toPostDTOs([]models.Post{*post})[0],
		"relatedPosts": toPostDTOs(related),
	})
}

// queryInt parses a non-negative query parameter; anything else reads as 0
// and the service applies its defaults.
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
