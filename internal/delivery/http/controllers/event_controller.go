package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"devevents/internal/delivery/http/helpers"
	"devevents/internal/domain"
)

const (
	// maxEventBodyBytes caps event submissions, including an uploaded image.
	maxEventBodyBytes = 6 << 20
	maxFormMemory     = 8 << 20
)

// EventRequest is the body for POST /api/events and PATCH /api/events/{slug}.
// Omitted fields are left unchanged on update. agenda and tags accept a list
// or a comma-delimited string.
type EventRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Overview    *string             `json:"overview"`
	Image       *string             `json:"image"`
	Venue       *string             `json:"venue"`
	Location    *string             `json:"location"`
	Date        *string             `json:"date" example:"2026-03-10"`
	Time        *string             `json:"time" example:"09:05"`
	Mode        *string             `json:"mode" enums:"online,offline,hybrid"`
	Audience    *string             `json:"audience"`
	Agenda      *helpers.StringList `json:"agenda" swaggertype:"array,string"`
	Organizer   *string             `json:"organizer"`
	Tags        *helpers.StringList `json:"tags" swaggertype:"array,string"`
}

// Patch converts the request into a domain patch.
func (req *EventRequest) Patch() *domain.EventPatch {
	p := &domain.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Overview:    req.Overview,
		Image:       req.Image,
		Venue:       req.Venue,
		Location:    req.Location,
		Date:        req.Date,
		Time:        req.Time,
		Mode:        req.Mode,
		Audience:    req.Audience,
		Organizer:   req.Organizer,
	}
	if req.Agenda != nil {
		p.Agenda = []string(*req.Agenda)
	}
	if req.Tags != nil {
		p.Tags = []string(*req.Tags)
	}
	return p
}

func eventRequestFromForm(values url.Values) *EventRequest {
	req := &EventRequest{
		Title:       helpers.FormString(values, "title"),
		Description: helpers.FormString(values, "description"),
		Overview:    helpers.FormString(values, "overview"),
		Image:       helpers.FormString(values, "image"),
		Venue:       helpers.FormString(values, "venue"),
		Location:    helpers.FormString(values, "location"),
		Date:        helpers.FormString(values, "date"),
		Time:        helpers.FormString(values, "time"),
		Mode:        helpers.FormString(values, "mode"),
		Audience:    helpers.FormString(values, "audience"),
		Organizer:   helpers.FormString(values, "organizer"),
	}
	if v, ok := values["agenda"]; ok {
		list := helpers.StringList(helpers.FormList(v))
		req.Agenda = &list
	}
	if v, ok := values["tags"]; ok {
		list := helpers.StringList(helpers.FormList(v))
		req.Tags = &list
	}
	return req
}

// EventSuccessResponse is the success envelope carrying one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope carrying a list of events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Images  domain.ImageStore
}

// NewEventController returns an EventController. images may be nil, in which
// case multipart image uploads are rejected.
func NewEventController(logger *slog.Logger, svc domain.EventService, images domain.ImageStore) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Images:  images,
	}
}

// readEventRequest decodes a JSON, urlencoded or multipart body. A multipart
// "image" file is uploaded and its URL used as the image field.
func (c *EventController) readEventRequest(w http.ResponseWriter, r *http.Request) (*EventRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodyBytes)
	kind := helpers.ContentKind(r)
	if kind == helpers.BodyJSON {
		var req EventRequest
		if !helpers.DecodeAndValidate(w, r, &req) {
			return nil, false
		}
		return &req, true
	}
	values, ok := helpers.ParseFormBody(w, r, kind, maxFormMemory)
	if !ok {
		return nil, false
	}
	req := eventRequestFromForm(values)
	if kind != helpers.BodyMultipart {
		return req, true
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, true
	}
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid image upload: "+err.Error())
		return nil, false
	}
	defer file.Close()
	if c.Images == nil {
		helpers.WriteJSONErrorFields(w, http.StatusBadRequest, helpers.ErrCodeValidationFailed,
			"image uploads are not enabled", map[string]string{"image": "provide an image URL instead"})
		return nil, false
	}
	imageURL, err := c.Images.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return nil, false
	}
	req.Image = &imageURL
	return req, true
}

// CreateEvent godoc
// @Summary Create an event
// @Description Ingests a new event. The slug is derived from the title and made unique; date is canonicalized to YYYY-MM-DD and time to HH:MM. Accepts JSON, urlencoded or multipart bodies; a multipart "image" file is uploaded and replaces the image field.
// @Tags events
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param event body EventRequest true "Event fields"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the stored event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := c.readEventRequest(w, r)
	if !ok {
		return
	}
	event := &domain.Event{}
	changes := req.Patch().Apply(event)
	if err := c.Service.CreateEvent(r.Context(), event, changes); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Returns all events, newest first.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by slug
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Applies the supplied fields. A new title yields a new slug; date and time are re-canonicalized when supplied.
// @Tags events
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param slug path string true "Event slug"
// @Param event body EventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := c.readEventRequest(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("slug"), req.Patch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListSimilarEvents godoc
// @Summary List similar events
// @Description Returns up to three other events sharing a tag with the given event.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug}/similar [get]
func (c *EventController) ListSimilarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListSimilarEvents(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
