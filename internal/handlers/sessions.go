package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/lehigh-university-libraries/shopdesk/internal/images"
	"github.com/lehigh-university-libraries/shopdesk/internal/models"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
	"github.com/lehigh-university-libraries/shopdesk/internal/storage"
)

type createSessionRequest struct {
	Mode    string          `json:"mode"`
	Product *models.Product `json:"product,omitempty"`
}

type imageValueRequest struct {
	Value string `json:"value"`
}

type submitResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Product *models.Product `json:"product,omitempty"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sessionStore.GetAll())
}

// HandleCreateSession opens a product form. Edit and delete sessions start
// from the product in the request body.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := productform.ParseMode(req.Mode)
	if err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}

	form := productform.New(mode)
	if req.Product != nil {
		form = productform.FromProduct(mode, *req.Product)
	}
	if err := form.Check(); err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}

	session := h.sessionStore.Create(form)
	slog.Info("Opened product form", "session_id", session.ID, "mode", mode, "product_id", form.ID)
	h.writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionStore.Get(r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := h.sessionStore.Delete(sessionID); err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}
	slog.Info("Closed product form", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSessionFields applies a set of field changes. Either all of them
// apply or none do.
func (h *Handler) HandleSessionFields(w http.ResponseWriter, r *http.Request) {
	var changes map[string]json.RawMessage
	if err := decodeJSON(w, r, &changes); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields := make([]string, 0, len(changes))
	for field := range changes {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	session, err := h.sessionStore.Update(r.PathValue("id"), func(s *storage.EditSession) error {
		form := *s.Form
		for _, field := range fields {
			if err := form.Set(field, fieldValue(changes[field])); err != nil {
				return err
			}
		}
		s.Form = &form
		return nil
	})
	if err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

// fieldValue accepts JSON strings as-is and other scalars by their literal text
func fieldValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (h *Handler) HandleSetImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, fmt.Sprintf("invalid image index %q", r.PathValue("index")), http.StatusBadRequest)
		return
	}

	var req imageValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.sessionStore.Update(r.PathValue("id"), func(s *storage.EditSession) error {
		return s.Form.Images.SetAt(index, req.Value)
	})
	if err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleAppendImage(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionStore.Update(r.PathValue("id"), func(s *storage.EditSession) error {
		if !s.Form.Images.Append() {
			return errCapacity
		}
		return nil
	})
	if err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleRemoveLastImage(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionStore.Update(r.PathValue("id"), func(s *storage.EditSession) error {
		s.Form.Images.RemoveLast()
		return nil
	})
	if err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

// HandleProbeImages downloads the form's main and gallery images and reports
// which of them are usable
func (h *Handler) HandleProbeImages(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionStore.Get(r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}

	product, err := session.Form.Payload()
	if err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}

	results := h.prober.ProbeAll(r.Context(), images.ProductURLs(product))
	h.writeJSON(w, http.StatusOK, results)
}

// HandleSubmitSession sends the form to the catalog API according to its
// mode. The session is closed once the API accepts it.
func (h *Handler) HandleSubmitSession(w http.ResponseWriter, r *http.Request) {
	token, err := tokenFrom(r)
	if err != nil {
		h.writeFailure(w, err, http.StatusUnauthorized)
		return
	}

	sessionID := r.PathValue("id")
	session, err := h.sessionStore.Get(sessionID)
	if err != nil {
		h.writeFailure(w, err, http.StatusInternalServerError)
		return
	}

	form := session.Form
	if err := form.Check(); err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}
	product, err := form.Payload()
	if err != nil {
		h.writeFailure(w, err, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch form.Mode {
	case productform.ModeCreate:
		err = h.catalog.CreateProduct(ctx, token, product)
	case productform.ModeEdit:
		err = h.catalog.UpdateProduct(ctx, token, form.ID, product)
	case productform.ModeDelete:
		err = h.catalog.DeleteProduct(ctx, token, form.ID)
	}
	if err != nil {
		slog.Error("Product submission failed", "session_id", sessionID, "mode", form.Mode, "err", err)
		h.writeFailure(w, err, http.StatusBadGateway)
		return
	}

	if err := h.sessionStore.Delete(sessionID); err != nil {
		slog.Warn("Session already closed", "session_id", sessionID)
	}
	slog.Info("Product submitted", "session_id", sessionID, "action", form.Mode.Verb(), "product_id", form.ID)

	resp := submitResponse{Success: true, Message: fmt.Sprintf("product %sd", form.Mode.Verb())}
	if form.Mode != productform.ModeDelete {
		resp.Product = &product
	}
	h.writeJSON(w, http.StatusOK, resp)
}
