// internal/api/api.go
//
// Admin JSON API for alias management.
//
/*
Context
--------
Network administrators manage alias records here; the resolution pipeline
never calls these handlers.  The router mounts both stores:

	POST   /aliases                 create a site alias
	GET    /aliases/{id}            fetch one
	PATCH  /aliases/{id}            update domain / status / kind
	DELETE /aliases/{id}            remove one
	GET    /sites/{id}/aliases      list a site's aliases
	DELETE /sites/{id}              soft-delete a site and purge its aliases

	POST   /network-aliases         same CRUD against the network store
	GET    /network-aliases/{id}
	PATCH  /network-aliases/{id}
	DELETE /network-aliases/{id}

Validation and uniqueness failures surface as typed JSON errors (400/409),
never as faults; storage failures map to 502.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/aliasd/internal/alias"
	"github.com/yanizio/aliasd/internal/site"
)

// API bundles the handlers' collaborators.
type API struct {
	DB             *sqlx.DB
	Sites          *site.Cache
	SiteAliases    *alias.Store
	NetworkAliases *alias.Store
}

// Routes builds and returns the router mounted at /api.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	mountAliasCRUD(r, "/aliases", a.SiteAliases)
	mountAliasCRUD(r, "/network-aliases", a.NetworkAliases)

	r.Get("/sites/{id}/aliases", a.listSiteAliases)
	r.Delete("/sites/{id}", a.deleteSite)

	return r
}

func mountAliasCRUD(r chi.Router, prefix string, st *alias.Store) {
	r.Route(prefix, func(r chi.Router) {
		r.Post("/", createAlias(st))
		r.Get("/{id}", getAlias(st))
		r.Patch("/{id}", updateAlias(st))
		r.Delete("/{id}", deleteAlias(st))
	})
}

/*──────────────────────────── alias handlers ───────────────────────────────*/

type createRequest struct {
	SiteID uint64       `json:"site_id"`
	Domain string       `json:"domain"`
	Status alias.Status `json:"status"`
	Kind   alias.Kind   `json:"kind"`
}

func createAlias(st *alias.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}

		rec, err := st.Create(r.Context(), req.SiteID, req.Domain, req.Status, req.Kind)
		if err != nil {
			writeAliasError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func getAlias(st *alias.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, err := st.Get(r.Context(), id)
		if err != nil {
			writeAliasError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

type updateRequest struct {
	Domain *string       `json:"domain"`
	Status *alias.Status `json:"status"`
	Kind   *alias.Kind   `json:"kind"`
}

func updateAlias(st *alias.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}

		changed, err := st.ApplyUpdate(r.Context(), id, alias.Update{
			Domain: req.Domain,
			Status: req.Status,
			Kind:   req.Kind,
		})
		if err != nil {
			writeAliasError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"updated": changed})
	}
}

func deleteAlias(st *alias.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := st.Delete(r.Context(), id); err != nil {
			writeAliasError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

/*──────────────────────────── site handlers ────────────────────────────────*/

func (a *API) listSiteAliases(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := a.SiteAliases.BySite(r.Context(), id)
	if err != nil {
		writeAliasError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// deleteSite soft-deletes the site row and purges its aliases.  The purge
// is the deliberate, explicit cascade: no FK does this for us.
func (a *API) deleteSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	purged, err := a.SiteAliases.PurgeSite(r.Context(), id)
	if err != nil {
		writeAliasError(w, err)
		return
	}

	if err := site.SoftDelete(r.Context(), a.DB, id); err != nil {
		if errors.Is(err, site.ErrNotFound) {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		zap.L().Error("site delete failed", zap.Uint64("site_id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "storage failure")
		return
	}
	a.Sites.Drop(id)

	writeJSON(w, http.StatusOK, map[string]int{"purged_aliases": purged})
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAliasError maps store errors onto HTTP statuses.  Validation and
// uniqueness problems are the user's to fix; anything else is a gateway
// fault.
func writeAliasError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, alias.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, alias.ErrDomainExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, alias.ErrInvalidSite),
		errors.Is(err, alias.ErrDomainEmpty),
		errors.Is(err, alias.ErrDomainNoTLD),
		errors.Is(err, alias.ErrDomainChars),
		errors.Is(err, alias.ErrDomainTooLong),
		errors.Is(err, alias.ErrBadStatus),
		errors.Is(err, alias.ErrBadKind):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("alias storage failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "storage failure")
	}
}
