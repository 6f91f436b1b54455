package api

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/contacts"
	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/storage"
)

const photoField = "photo"

type createContactRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=20"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=3,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	IsFavourite bool   `json:"isFavourite"`
	ContactType string `json:"contactType" validate:"omitempty,oneof=work home personal"`
}

type updateContactRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=20"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=3,max=20"`
	Email       *string `json:"email" validate:"omitempty,email"`
	IsFavourite *bool   `json:"isFavourite"`
	ContactType *string `json:"contactType" validate:"omitempty,oneof=work home personal"`
}

func (req updateContactRequest) empty() bool {
	return req.Name == nil && req.PhoneNumber == nil && req.Email == nil &&
		req.IsFavourite == nil && req.ContactType == nil
}

func (req updateContactRequest) patch() models.ContactPatch {
	p := models.ContactPatch{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		IsFavourite: req.IsFavourite,
	}
	if req.ContactType != nil {
		t := models.ContactType(*req.ContactType)
		p.ContactType = &t
	}
	return p
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseForm reads a multipart body bounded by the upload limit.
func (api *Api) parseForm(w http.ResponseWriter, r *http.Request) error {
	limit := api.Config.Storage.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBody)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(http.StatusRequestEntityTooLarge, "File is too large")
		}
		return apperr.BadRequest("Invalid multipart body")
	}
	return nil
}

func formValue(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

func formBool(form *multipart.Form, key string) (*bool, error) {
	v := formValue(form, key)
	if v == nil {
		return nil, nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("%q must be a boolean", key))
	}
	return &b, nil
}

func formUpdate(form *multipart.Form) (updateContactRequest, error) {
	fav, err := formBool(form, "isFavourite")
	if err != nil {
		return updateContactRequest{}, err
	}
	return updateContactRequest{
		Name:        formValue(form, "name"),
		PhoneNumber: formValue(form, "phoneNumber"),
		Email:       formValue(form, "email"),
		IsFavourite: fav,
		ContactType: formValue(form, "contactType"),
	}, nil
}

// stagePhoto copies the uploaded photo, if any, into the temp dir.
func (api *Api) stagePhoto(r *http.Request) (*storage.StagedFile, error) {
	file, header, err := r.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.BadRequest("Invalid photo upload")
	}
	defer file.Close()

	staged, err := storage.Stage(api.Config.Storage.TempDir, header.Filename,
		header.Header.Get("Content-Type"), file, api.Config.Storage.MaxUploadSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, apperr.New(http.StatusRequestEntityTooLarge, "File is too large")
		}
		return nil, apperr.Internal("Failed to upload photo", err)
	}
	return &staged, nil
}

// readContact decodes a JSON or multipart body into dst and stages the
// photo of a multipart body once the fields are valid.
func (api *Api) readContact(w http.ResponseWriter, r *http.Request, dst *updateContactRequest) (*storage.StagedFile, error) {
	if !isMultipart(r) {
		return nil, api.decodeJSON(w, r, dst)
	}

	if err := api.parseForm(w, r); err != nil {
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	req, err := formUpdate(r.MultipartForm)
	if err != nil {
		return nil, err
	}
	if err := api.check(&req); err != nil {
		return nil, err
	}
	*dst = req
	return api.stagePhoto(r)
}

func (api *Api) ListContactsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.respondError(w, r, err)
		return
	}

	page, err := api.contacts.List(r.Context(), contacts.ParseListQuery(userID, r.URL.Query()))
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Successfully found contacts!", page)
}

func (api *Api) GetContactHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.respondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "contactId")
	contact, err := api.contacts.Get(r.Context(), id, userID)
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, fmt.Sprintf("Successfully found contact with id %s!", id), contact)
}

func (api *Api) CreateContactHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.respondError(w, r, err)
		return
	}

	var fields updateContactRequest
	photo, err := api.readContact(w, r, &fields)
	if err != nil {
		api.respondError(w, r, err)
		return
	}

	req := createContactRequest{}
	if fields.Name != nil {
		req.Name = *fields.Name
	}
	if fields.PhoneNumber != nil {
		req.PhoneNumber = *fields.PhoneNumber
	}
	if fields.Email != nil {
		req.Email = *fields.Email
	}
	if fields.IsFavourite != nil {
		req.IsFavourite = *fields.IsFavourite
	}
	if fields.ContactType != nil {
		req.ContactType = *fields.ContactType
	}
	if err := api.check(&req); err != nil {
		if photo != nil {
			storage.Discard(api.log, *photo)
		}
		api.respondError(w, r, err)
		return
	}

	contact, err := api.contacts.Create(r.Context(), userID, contacts.CreateInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		IsFavourite: req.IsFavourite,
		ContactType: models.ContactType(req.ContactType),
		Photo:       photo,
	})
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Successfully created a contact!", contact)
}

func (api *Api) UpdateContactHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.respondError(w, r, err)
		return
	}

	var req updateContactRequest
	photo, err := api.readContact(w, r, &req)
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	if req.empty() && photo == nil {
		api.respondError(w, r, apperr.BadRequest("Body must have at least one field"))
		return
	}

	contact, err := api.contacts.Update(r.Context(), chi.URLParam(r, "contactId"), userID, contacts.UpdateInput{
		Patch: req.patch(),
		Photo: photo,
	})
	if err != nil {
		api.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Successfully patched a contact!", contact)
}

func (api *Api) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.respondError(w, r, err)
		return
	}

	if _, err := api.contacts.Delete(r.Context(), chi.URLParam(r, "contactId"), userID); err != nil {
		api.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
