package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"react2give/pkg/models"
	"react2give/pkg/registry"
	"react2give/pkg/utils"

	"github.com/go-chi/chi/v5"
)

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func writeRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, registry.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	case errors.Is(err, registry.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Already exists"})
	default:
		slog.Error(utils.LogPrefix(correlationID(r))+"Registry request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

// readValidated reads the body, checks it against validate and decodes it into v.
func readValidated(r *http.Request, validate func([]byte) error, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Join(registry.ErrValidation, err)
	}
	if err := validate(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(registry.ErrValidation, err)
	}
	return nil
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	var u models.User
	if err := readValidated(r, registry.ValidateUser, &u); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	u.ID = p.UserID
	u.Role = models.RoleDonor

	if err := s.registry.CreateUser(r.Context(), &u); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	slog.Info(utils.LogPrefix(correlationID(r))+"User registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	u, err := s.registry.GetUser(r.Context(), p.UserID)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)

	var u models.User
	if err := readValidated(r, registry.ValidateUser, &u); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	u.ID = p.UserID

	if err := s.registry.UpdateUser(r.Context(), &u); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	updated, err := s.registry.GetUser(r.Context(), p.UserID)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var o models.Organization
	if err := readValidated(r, registry.ValidateOrganization, &o); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	o.ID = ""

	if err := s.registry.CreateOrganization(r.Context(), &o); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.registry.ListUsers(r.Context())
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Users []models.User `json:"users"`
		Count int           `json:"totalUsers"`
	}{Users: users, Count: len(users)})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeleteUser(r.Context(), urlParam(r, "id")); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	summary, err := s.registry.ListDonations(r.Context())
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeleteDonation(r.Context(), urlParam(r, "id")); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.registry.ListOrganizations(r.Context())
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}
