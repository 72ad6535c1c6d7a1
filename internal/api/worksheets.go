package api

import (
	"net/http"
	"strings"
)

// ListWorksheets handles GET /api/worksheets.
//
//	@Summary		List stored worksheets
//	@Tags			worksheets
//	@Produce		json
//	@Success		200	{object}	WorksheetListResponse
//	@Security		BearerAuth
//	@Router			/worksheets [get]
func (h *Handler) ListWorksheets(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListWorksheets(r.Context())
	if err != nil {
		writeError(w, r, "list worksheets", err)
		return
	}
	writeJSON(w, http.StatusOK, WorksheetListResponse{Worksheets: items})
}

// GetWorksheet handles GET /api/worksheets/*.
//
//	@Summary		Get an evaluated worksheet
//	@Tags			worksheets
//	@Produce		json
//	@Param			path	path		string	true	"Worksheet path"
//	@Success		200		{object}	models.Worksheet
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/worksheets/{path} [get]
func (h *Handler) GetWorksheet(w http.ResponseWriter, r *http.Request) {
	path := worksheetPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	ws, err := h.svc.GetWorksheet(r.Context(), path)
	if err != nil {
		writeError(w, r, "get worksheet", err)
		return
	}
	w.Header().Set("ETag", `"`+ws.Checksum+`"`)
	writeJSON(w, http.StatusOK, ws)
}

// CreateWorksheet handles POST /api/worksheets.
//
//	@Summary		Create and evaluate a worksheet
//	@Tags			worksheets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateWorksheetRequest	true	"Worksheet to create"
//	@Success		201		{object}	models.Worksheet
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/worksheets [post]
func (h *Handler) CreateWorksheet(w http.ResponseWriter, r *http.Request) {
	var req CreateWorksheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.svc.CreateWorksheet(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, r, "create worksheet", err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

// UpdateWorksheet handles PUT /api/worksheets/*.
//
//	@Summary		Replace a worksheet with optimistic concurrency
//	@Tags			worksheets
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string					true	"Worksheet path"
//	@Param			If-Match	header		string					false	"SHA-256 checksum of the current content"
//	@Param			body		body		UpdateWorksheetRequest	true	"New content"
//	@Success		200			{object}	models.Worksheet
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/worksheets/{path} [put]
func (h *Handler) UpdateWorksheet(w http.ResponseWriter, r *http.Request) {
	path := worksheetPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateWorksheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	ws, err := h.svc.UpdateWorksheet(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		writeError(w, r, "update worksheet", err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// DeleteWorksheet handles DELETE /api/worksheets/*.
//
//	@Summary		Delete a worksheet
//	@Tags			worksheets
//	@Param			path	path	string	true	"Worksheet path"
//	@Success		204		"Worksheet deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/worksheets/{path} [delete]
func (h *Handler) DeleteWorksheet(w http.ResponseWriter, r *http.Request) {
	path := worksheetPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteWorksheet(r.Context(), path); err != nil {
		writeError(w, r, "delete worksheet", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveWorksheet handles POST /api/worksheets/move.
//
//	@Summary		Rename a worksheet
//	@Tags			worksheets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveWorksheetRequest	true	"Source and target paths"
//	@Success		200		{object}	models.Worksheet
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/worksheets/move [post]
func (h *Handler) MoveWorksheet(w http.ResponseWriter, r *http.Request) {
	var req MoveWorksheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.svc.MoveWorksheet(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, r, "move worksheet", err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}
