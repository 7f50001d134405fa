package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripmatch/internal/domain"
)

// Contact is the API representation of a domain.Contact.
type Contact struct {
	Id        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	Email     *string            `json:"email,omitempty"`
	Company   *string            `json:"company,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// CreateContactRequest is the body of POST /contacts.
type CreateContactRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Company *string `json:"company,omitempty"`
}

// CreateContact handles POST /contacts.
func (s *Server) CreateContact(w http.ResponseWriter, r *http.Request) {
	var body CreateContactRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	created, err := s.contacts.Create(r.Context(), domain.Contact{
		Name:    body.Name,
		Email:   derefString(body.Email),
		Company: derefString(body.Company),
	})
	if err != nil {
		writeServiceError(w, r, err, "contact not found")
		return
	}
	writeJSON(w, http.StatusCreated, contactToResponse(created))
}

// ListContacts handles GET /contacts.
func (s *Server) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "contact not found")
		return
	}
	data := make([]Contact, len(contacts))
	for i, c := range contacts {
		data[i] = contactToResponse(c)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetContact handles GET /contacts/{id}.
func (s *Server) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	c, err := s.contacts.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "contact not found")
		return
	}
	writeJSON(w, http.StatusOK, contactToResponse(c))
}

func contactToResponse(c domain.Contact) Contact {
	return Contact{
		Id:        c.ID,
		Name:      c.Name,
		Email:     nilIfEmpty(c.Email),
		Company:   nilIfEmpty(c.Company),
		CreatedAt: c.CreatedAt,
	}
}
